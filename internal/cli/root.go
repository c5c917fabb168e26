// Package cli wires the cobra command tree: extract, validate and update.
// Primary results go to stdout; all diagnostics go to the error channel so
// stdout stays machine-parseable.
package cli

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"permgate/internal/android"
	"permgate/internal/baseline"
	"permgate/internal/config"
	"permgate/internal/fetch"
	"permgate/internal/gate"
	"permgate/internal/ios"
	"permgate/internal/logger"
	"permgate/internal/tooling"
)

// options carry the global flags and resolved settings shared by all
// subcommands.
type options struct {
	verbose      bool
	insecure     bool
	baselinePath string
	configFile   string

	settings config.Settings
}

// NewRootCmd builds the permgate command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "permgate",
		Short: "Permission drift gate for mobile app artifacts",
		Long: `permgate extracts the declared runtime permissions of Android (APK/AAB)
and iOS (IPA) artifacts, compares them against an approved baseline and
fails the build when the permission surface drifts without review.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(opts.verbose); err != nil {
				return err
			}

			settings, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if opts.baselinePath != "" {
				settings.Baseline = opts.baselinePath
			}
			if opts.insecure {
				settings.Insecure = true
			}
			opts.settings = settings
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable step-by-step diagnostics on stderr")
	flags.BoolVar(&opts.insecure, "insecure", false, "disable TLS certificate verification for remote fetches")
	flags.StringVar(&opts.baselinePath, "baseline", "", "baseline file path (default "+baseline.DefaultPath+")")
	flags.StringVar(&opts.configFile, "config", "", "config file path (default "+config.DefaultFile+" if present)")

	root.AddCommand(
		newExtractCmd(opts),
		newValidateCmd(opts),
		newUpdateCmd(opts),
	)

	return root
}

// controller assembles the gate with its collaborators. Tool resolution
// happens once here, based on which artifact kinds the arguments carry, and
// the resolved tools are injected rather than re-probed per artifact.
func (o *options) controller(artifacts []string) (*gate.Controller, error) {
	runner := tooling.NewRunner(logger.WithModule("exec"))

	c := &gate.Controller{
		Store:   baseline.NewStore(o.settings.Baseline),
		IOS:     ios.NewExtractor(tooling.ReadPlist, logger.WithModule("ios")),
		Fetcher: fetch.New(o.settings.FetchTimeout, o.settings.Insecure, logger.WithModule("fetch")),
		Creds: fetch.Credentials{
			Username: o.settings.FetchUser,
			Password: o.settings.FetchPassword,
		},
		Log: logger.WithModule("gate"),
	}

	needsAndroid, needsBundle := toolNeeds(artifacts)
	if needsAndroid {
		aapt, err := tooling.ResolveAAPT(runner, o.settings.AAPT)
		if err != nil {
			return nil, err
		}
		c.Android = android.NewExtractor(aapt, logger.WithModule("android"))
	}
	if needsBundle {
		converter, err := tooling.ResolveBundletool(runner, o.settings.Bundletool)
		if err != nil {
			return nil, err
		}
		c.Converter = converter
	}

	return c, nil
}

// toolNeeds inspects artifact references (local paths or URLs) to decide
// which external tools the run requires.
func toolNeeds(artifacts []string) (needsAndroid, needsBundle bool) {
	for _, ref := range artifacts {
		switch refExt(ref) {
		case ".apk":
			needsAndroid = true
		case ".aab":
			needsAndroid = true
			needsBundle = true
		}
	}
	return needsAndroid, needsBundle
}

// refExt returns the lowercased extension of an artifact reference. Remote
// references are parsed as URLs first so that query strings and fragments,
// the usual shape of signed CI artifact URLs, do not leak into the
// extension.
func refExt(ref string) string {
	target := ref
	if fetch.IsRemote(ref) {
		if parsed, err := url.Parse(ref); err == nil {
			target = parsed.Path
		}
	}
	return strings.ToLower(filepath.Ext(target))
}
