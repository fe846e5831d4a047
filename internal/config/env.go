package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
)

// EnvMode overrides build.mode when set.
const EnvMode = "SIDEBARGEN_MODE"

// loadEnvFiles loads .env and .env.local from the working directory and
// from dir. Variables already present in the environment win.
func loadEnvFiles(dir string) {
	seen := make(map[string]bool)
	for _, base := range []string{".", dir} {
		for _, name := range []string{".env", ".env.local"} {
			p := filepath.Join(base, name)
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := godotenv.Load(p); err != nil {
				fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", p, err)
			}
		}
	}
}

func applyEnvOverrides(cfg *Config) error {
	raw, ok := os.LookupEnv(EnvMode)
	if !ok || raw == "" {
		return nil
	}
	mode, err := linkresolve.ParseMode(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvMode, err)
	}
	cfg.Build.Mode = mode
	return nil
}
