// Package config resolves gate settings from defaults, an optional YAML
// file and PERMGATE_* environment variables. Precedence: flags (applied by
// the CLI layer) beat environment, environment beats file, file beats
// defaults.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"permgate/internal/baseline"
)

// EnvPrefix namespaces the environment variables (PERMGATE_BASELINE etc.).
const EnvPrefix = "permgate"

// DefaultFile is the config file looked up in the working directory when no
// explicit path is given.
const DefaultFile = "permgate.yaml"

// Settings are the resolved gate settings. Fields carry no envconfig
// defaults on purpose: defaults are set in Load so an unset variable never
// clobbers a file-provided value.
type Settings struct {
	Baseline      string        `envconfig:"BASELINE" yaml:"baseline"`
	AAPT          string        `envconfig:"AAPT" yaml:"aapt"`
	Bundletool    string        `envconfig:"BUNDLETOOL" yaml:"bundletool"`
	FetchTimeout  time.Duration `envconfig:"FETCH_TIMEOUT" yaml:"fetchTimeout"`
	FetchUser     string        `envconfig:"FETCH_USER" yaml:"fetchUser"`
	FetchPassword string        `envconfig:"FETCH_PASSWORD" yaml:"-"`
	Insecure      bool          `envconfig:"INSECURE" yaml:"insecure"`
}

func defaults() Settings {
	return Settings{
		Baseline:     baseline.DefaultPath,
		FetchTimeout: 60 * time.Second,
	}
}

// Load resolves settings. file may be empty, in which case DefaultFile is
// read if present; a missing default file is not an error, a missing
// explicit one is.
func Load(file string) (Settings, error) {
	s := defaults()

	explicit := file != ""
	if file == "" {
		file = DefaultFile
	}

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, errors.Wrapf(err, "parse config file %s", file)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file; defaults and environment apply.
	default:
		return Settings{}, errors.Wrapf(err, "config file %s", file)
	}

	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, errors.Wrap(err, "process environment")
	}

	return s, nil
}
