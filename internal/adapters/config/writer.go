package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

var ErrConfigExists = errors.New("config file already exists")

// Encode renders settings in the config file format.
func Encode(settings Settings) ([]byte, error) {
	file := toSchema(settings)
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encode config file: %w", err)
	}
	return data, nil
}

// Write stores settings at path, replacing the file atomically. An existing
// file is kept unless overwrite is set.
func Write(path string, settings Settings, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := Encode(settings)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
