// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "qlbuild",
		Short: "A CLI to create and register CodeQL analysis databases",
		Long: `qlbuild wraps the CodeQL CLI to build analysis databases for a
project: it clears out previously generated databases, runs
'codeql database create' against a fresh timestamped directory, and
registers the result with your editor.`,
	}

	databaseCmd = &cobra.Command{
		Use:     "database",
		Aliases: []string{"db"},
		Short:   "Manage CodeQL databases under a source root",
	}

	buildCmd = &cobra.Command{
		Use:   "build [source-root]",
		Short: "Build a database, tracing an explicit build command",
		Long: `Builds a CodeQL database for the given source root. The external
tool runs your project's build command under tracing, so compiled
languages get full extraction. Prompts for the language and the build
command unless --language and --command are set.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runBuildCommand,
	}

	autobuildCmd = &cobra.Command{
		Use:   "autobuild [source-root]",
		Short: "Build a database without a build command",
		Long: `Builds a CodeQL database for the given source root without
tracing a build command (--build-mode=none). Suitable for interpreted
languages and for compiled projects CodeQL can build on its own.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runAutobuildCommand,
	}

	listCmd = &cobra.Command{
		Use:   "list [source-root]",
		Short: "List generated databases under a source root",
		Args:  cobra.MaximumNArgs(1),
		Run:   runListCommand,
	}

	languageFlag string
	commandFlag  string
)

func init() {
	buildCmd.Flags().StringVarP(&languageFlag, "language", "l", "", "analysis language (java, javascript)")
	buildCmd.Flags().StringVarP(&commandFlag, "command", "c", "", "build command to trace (e.g. 'mvn package')")
	autobuildCmd.Flags().StringVarP(&languageFlag, "language", "l", "", "analysis language (java, javascript)")

	databaseCmd.AddCommand(buildCmd)
	databaseCmd.AddCommand(autobuildCmd)
	databaseCmd.AddCommand(listCmd)
	rootCmd.AddCommand(databaseCmd)
}
