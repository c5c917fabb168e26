package android

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"permgate/internal/identity"
	"permgate/internal/permission"
)

var (
	nameAttr        = regexp.MustCompile(`name='([^']*)'`)
	versionCodeAttr = regexp.MustCompile(`versionCode='([^']*)'`)
	versionNameAttr = regexp.MustCompile(`versionName='([^']*)'`)
	maxSdkAttr      = regexp.MustCompile(`maxSdkVersion='([^']*)'`)
)

// maxDumpLine caps a single dump line. Badging lines can exceed bufio's
// default 64KB token limit on apps with many locales, and a scanner that
// stops early would silently drop every declaration after the oversized
// line.
const maxDumpLine = 4 * 1024 * 1024

func newDumpScanner(raw string) *bufio.Scanner {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), maxDumpLine)
	return scanner
}

// ParseBadging extracts the owning package identity from a badging dump.
// The first "package:" line whose name attribute is a well-formed
// reverse-domain identifier wins; if no line qualifies the dump is
// rejected with ErrPackageIdentity.
func ParseBadging(raw string) (PackageInfo, error) {
	scanner := newDumpScanner(raw)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "package:") {
			continue
		}

		name := attrValue(nameAttr, line)
		if _, err := identity.Parse(name); err != nil {
			continue
		}

		return PackageInfo{
			Name:        name,
			VersionCode: attrValue(versionCodeAttr, line),
			VersionName: attrValue(versionNameAttr, line),
		}, nil
	}

	if err := scanner.Err(); err != nil {
		return PackageInfo{}, errors.Wrap(err, "scan badging dump")
	}
	return PackageInfo{}, errors.Wrap(ErrPackageIdentity, "no well-formed package line in badging dump")
}

// ParsePermissions extracts every uses-permission declaration from a
// permissions dump. Lines without a name attribute are skipped: an absent
// name means the line is not a real permission entry, not an error. A scan
// failure is an error, because a partial read could hide declarations and
// let a drifted build through.
func ParsePermissions(raw string) ([]permission.Record, error) {
	var records []permission.Record

	scanner := newDumpScanner(raw)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "uses-permission:") {
			continue
		}

		name := attrValue(nameAttr, line)
		if name == "" {
			continue
		}

		rec := permission.Record{RawName: name}
		if v := attrValue(maxSdkAttr, line); v != "" {
			if max, err := strconv.Atoi(v); err == nil && max >= 0 {
				rec.MaxSDKVersion = &max
			}
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan permissions dump")
	}
	return records, nil
}

func attrValue(re *regexp.Regexp, line string) string {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}
