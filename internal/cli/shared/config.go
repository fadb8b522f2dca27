package shared

import (
	"errors"

	"github.com/ariel-frischer/ilverify/internal/config"
	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/spf13/cobra"
)

// ConfigFlagName is the persistent flag selecting an explicit config file.
const ConfigFlagName = "config"

// LoadConfig loads configuration honoring the --config flag, when the command
// has one. Load failures are returned as Configuration CLIErrors.
func LoadConfig(cmd *cobra.Command) (*config.Loaded, error) {
	var opts config.LoadOptions
	if f := cmd.Flags().Lookup(ConfigFlagName); f != nil {
		opts.ConfigPath = f.Value.String()
	}
	return LoadConfigWithOptions(opts)
}

// LoadConfigWithOptions is LoadConfig for explicit options.
func LoadConfigWithOptions(opts config.LoadOptions) (*config.Loaded, error) {
	loaded, err := config.LoadWithOptions(opts)
	if err != nil {
		return nil, ConfigError(err)
	}
	return loaded, nil
}

// ConfigError classifies a configuration load error: YAML syntax errors (which
// carry a line number) name the file, everything else is an invalid value.
func ConfigError(err error) *clierrors.CLIError {
	var ve *config.ValidationError
	if errors.As(err, &ve) && ve.Line > 0 {
		return clierrors.ConfigParseError(ve.FilePath, err)
	}
	return clierrors.ConfigInvalid(err)
}
