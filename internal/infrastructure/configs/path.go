package configs

import (
	"flag"
	"os"

	"github.com/RishitTandon7/CineVerse/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from the --config flag, the
// CINEVERSE_CONFIG env var, or a list of conventional locations. An empty
// return means run on defaults and env overrides alone.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("CINEVERSE_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/cineverse/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
