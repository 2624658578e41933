package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads env vars from .env.local and .env in the working directory
// and its parents. It only sets vars that are not already set, matching
// godotenv's behavior, so real environment variables always win.
func LoadDotEnv(logPrefix string) {
	var paths []string
	dir, err := filepath.Abs(".")
	if err != nil {
		return
	}
	for d := dir; ; {
		paths = append(paths, filepath.Join(d, ".env.local"), filepath.Join(d, ".env"))
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			log.Fatalf("%s failed to load %s: %v", logPrefix, p, err)
		} else {
			log.Printf("%s loaded env from %s", logPrefix, p)
		}
	}
}
