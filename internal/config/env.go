package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

// envReference matches ${NAME} references.
var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadEnv loads the dotenv file named by EnvFile into the process
// environment, then expands ${VAR} references in the non-shell action
// settings. Shell commands are left as written: their children inherit the
// loaded environment and sh expands variables itself.
// Variables already set in the environment win over the file.
// A missing default file is ignored, a missing explicit file is an error.
func (c *Config) LoadEnv() error {
	path := c.EnvFile
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || c.EnvFile != "" {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	c.ExpandEnv()

	return nil
}

// ExpandEnv substitutes ${NAME} in the MPD address, password and playlist.
// Unset names and every other use of $ are kept verbatim.
func (c *Config) ExpandEnv() {
	c.Playback.Address = expandSet(c.Playback.Address)
	c.Playback.Password = expandSet(c.Playback.Password)
	c.Playback.Playlist = expandSet(c.Playback.Playlist)
}

func expandSet(s string) string {
	return envReference.ReplaceAllStringFunc(s, func(ref string) string {
		if v, ok := os.LookupEnv(ref[2 : len(ref)-1]); ok {
			return v
		}

		return ref
	})
}
