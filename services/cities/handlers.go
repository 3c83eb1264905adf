// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cities

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prometheusWaluigi/ASTRA/pkg/logging"
)

const searchLimit = 10

// SearchHandler serves GET /city_search?country=&query= with up to ten
// prefix matches.
func SearchHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := c.Query("country")
		query := c.Query("query")
		c.JSON(http.StatusOK, store.Search(country, query, searchLimit))
	}
}

// LookupHandler serves GET /city_lookup?city=&country= with the exact
// match, or a 404 JSON error.
func LookupHandler(store *Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("city")
		country := c.Query("country")

		city, ok := store.Lookup(name, country)
		if !ok {
			log.Warn("city lookup miss", "city", name, "country", country)
			c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
			return
		}
		c.JSON(http.StatusOK, city)
	}
}

// NewRouter assembles the city API together with health and metrics
// endpoints.
func NewRouter(store *Store, log *logging.Logger) *gin.Engine {
	if log == nil {
		log = logging.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/city_search", SearchHandler(store))
	r.GET("/city_lookup", LookupHandler(store, log))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cities": store.Len()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
