// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global QLBuildConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(dir, "qlbuild.yaml")
	// create it if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf(" First run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return err
		}
	}
	cfg, err := loadFrom(configPath)
	if err != nil {
		return err
	}
	Global = cfg
	return nil
}

// loadFrom reads and parses a config file. Split out of loadInternal
// so tests can load from a temp path without touching the singleton.
func loadFrom(path string) (QLBuildConfig, error) {
	var cfg QLBuildConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file: %w", err)
	}
	applyFallbacks(&cfg)
	return cfg, nil
}

// applyFallbacks fills fields an older or hand-edited config file may
// leave empty.
func applyFallbacks(cfg *QLBuildConfig) {
	if cfg.CodeQL.BinaryPath == "" {
		cfg.CodeQL.BinaryPath = "codeql"
	}
	if cfg.CodeQL.DatabasePrefix == "" {
		cfg.CodeQL.DatabasePrefix = "sample_"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	defaultCfg := DefaultConfig()
	data, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dir returns the qlbuild config directory (~/.qlbuild).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".qlbuild"), nil
}

// LockDir returns the directory for per-source-root build locks.
func LockDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "locks"), nil
}
