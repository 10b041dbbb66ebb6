package pipeline

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/crossflow/pkg/errors"
)

// DefaultConfigFile is looked up in the working directory when no config
// path is given.
const DefaultConfigFile = "crossflow.toml"

// LoadConfig decodes the TOML file at path into opts, expanding ${VAR}
// references first. Keys absent from the file leave opts untouched, so
// callers can pre-populate defaults and apply flags afterwards. Options
// are not validated here; [Runner.Execute] does that once flags are merged.
func LoadConfig(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	md, err := toml.Decode(os.ExpandEnv(string(data)), opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "config file %s: unknown key %s", path, undecoded[0])
	}
	return nil
}

// LoadDefaultConfig loads [DefaultConfigFile] when it exists and reports
// whether it did.
func LoadDefaultConfig(opts *Options) (bool, error) {
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		return false, nil
	}
	return true, LoadConfig(DefaultConfigFile, opts)
}
