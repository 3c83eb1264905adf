// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/prometheusWaluigi/ASTRA/pkg/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "astra",
	Short: "fKPZχ qualia field engine",
	Long: `ASTRA evolves 2D qualia fields under the fractional KPZ equation:
chart-seeded initial states, forward and bidirectional evolution, and
topological narrative summaries.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to run config YAML (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func newLogger(service string) *logging.Logger {
	level := logging.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(logging.Config{Level: level, Service: service})
}
