package config

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// SetupLogging installs the apex/log handler and level chosen by the config.
func SetupLogging(cfg *Config) {
	if cfg.LogFormat == "json" {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}
	if cfg.LogLevel != "" {
		log.SetLevelFromString(cfg.LogLevel)
	}
}
