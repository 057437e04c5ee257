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

type QLBuildConfig struct {
	// CodeQL: how the external CLI is located and invoked
	CodeQL CodeQLConfig `yaml:"codeql"`

	// Logging: level and optional log directory
	Logging LoggingConfig `yaml:"logging"`
}

type CodeQLConfig struct {
	BinaryPath      string   `yaml:"binary_path"`      // e.g. /usr/local/bin/codeql; empty means PATH lookup
	DatabasePrefix  string   `yaml:"database_prefix"`  // e.g. sample_
	RegisterCommand []string `yaml:"register_command"` // e.g. ["code", "--open-url"]; empty prints the path
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dir   string `yaml:"dir"`   // e.g. ~/.qlbuild/logs; empty disables file logs
}

func DefaultConfig() QLBuildConfig {
	return QLBuildConfig{
		CodeQL: CodeQLConfig{
			BinaryPath:      "codeql",
			DatabasePrefix:  "sample_",
			RegisterCommand: []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.qlbuild/logs",
		},
	}
}
