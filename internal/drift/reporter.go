package drift

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	addedColor   = color.New(color.FgRed)
	removedColor = color.New(color.FgYellow)
	passColor    = color.New(color.FgGreen)
)

// FormatCLI renders the human-readable verdict report, including
// remediation instructions on failure.
func FormatCLI(report Report) string {
	var sb strings.Builder

	if !report.HasDrift {
		sb.WriteString(passColor.Sprint("PASS") + ": permission sets match the approved baseline\n")
		return sb.String()
	}

	sb.WriteString("Permission drift detected against the approved baseline")
	if !report.BaselineTime.IsZero() {
		sb.WriteString(fmt.Sprintf(" (last updated %s)", report.BaselineTime.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString(":\n")

	for _, p := range report.Platforms {
		if p.Empty() {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n[%s]\n", p.Platform))
		if len(p.Added) > 0 {
			sb.WriteString("  New permissions:\n")
			for _, name := range p.Added {
				sb.WriteString(addedColor.Sprintf("    + %s\n", name))
			}
		}
		if len(p.Removed) > 0 {
			sb.WriteString("  Removed permissions:\n")
			for _, name := range p.Removed {
				sb.WriteString(removedColor.Sprintf("    - %s\n", name))
			}
		}
	}

	sb.WriteString("\nIf these changes are intentional, re-approve the baseline with:\n")
	sb.WriteString("  permgate update <artifact...>\n")
	return sb.String()
}

// FormatCI renders the report as GitHub Actions annotations.
func FormatCI(report Report) string {
	if !report.HasDrift {
		return ""
	}

	var sb strings.Builder
	total := 0
	for _, p := range report.Platforms {
		for _, name := range p.Added {
			sb.WriteString(fmt.Sprintf("::error::Permission drift (%s): %s added\n", p.Platform, name))
			total++
		}
		for _, name := range p.Removed {
			sb.WriteString(fmt.Sprintf("::warning::Permission drift (%s): %s removed\n", p.Platform, name))
			total++
		}
	}
	sb.WriteString(fmt.Sprintf("\nPermission drift detected: %d change(s) since baseline\n", total))
	return sb.String()
}

// FormatJSON renders the machine-checkable verdict document.
func FormatJSON(report Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
