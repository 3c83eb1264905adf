// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/prometheusWaluigi/ASTRA/services/cities"
)

var (
	serveAddr     string
	citiesCSVPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the city lookup API with health and metrics endpoints",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&citiesCSVPath, "cities", "data/worldcities.csv", "path to the worldcities CSV")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger("astra.serve")
	defer logger.Close()

	store, err := cities.LoadFile(citiesCSVPath)
	if err != nil {
		return err
	}
	logger.Info("city dataset loaded", "cities", store.Len(), "path", citiesCSVPath)

	router := cities.NewRouter(store, logger)
	logger.Info("listening", "addr", serveAddr)
	return router.Run(serveAddr)
}
