package app

import (
	"os"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Language == "" {
		cfg.Language = os.Getenv("WIKI_LANGUAGE")
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = os.Getenv("WIKI_API_URL")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv("WIKI_USER_AGENT")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("DB_PATH")
	}
	if cfg.DBTable == "" {
		cfg.DBTable = os.Getenv("DB_TABLE")
	}

	if cfg.FetchTimeout == 0 {
		if s := os.Getenv("FETCH_TIMEOUT"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.FetchTimeout = d
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			if s == "1" || s == "true" || s == "yes" || s == "on" {
				*dst = true
			}
		}
	}
	setBool(&cfg.DBInit, "DB_INIT")
	setBool(&cfg.Verbose, "VERBOSE")
}
