package cmd

import (
	"os"
	"path/filepath"

	"github.com/Laisky/errors/v2"

	"github.com/gopak/dcs-cli/internal/assets"
	"github.com/gopak/dcs-cli/internal/config"
)

// configFiles returns --config when given, otherwise every YAML file in the
// user's dcs config directory.
func configFiles(explicit string) ([]string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, errors.Wrap(err, "config")
		}
		return []string{explicit}, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		// no home directory: run on the built-in defaults
		return nil, nil
	}
	return config.FilesInDir(filepath.Join(dir, "dcs"))
}

func loadConfig(explicit string) (config.Config, error) {
	files, err := configFiles(explicit)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadDefaultsAndFiles(assets.DefaultConfig(), files)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "config error")
	}
	if err := config.ValidateAgainstSchema(cfg); err != nil {
		return config.Config{}, errors.Wrap(err, "schema error")
	}
	return cfg, nil
}
