// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cities serves natal-location lookups from a worldcities CSV
// snapshot held in memory.
package cities

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// City is one row of the location dataset.
type City struct {
	Name    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Store holds the loaded dataset and answers search and lookup
// queries. It is immutable after Load, so concurrent reads need no
// locking.
type Store struct {
	cities []City
}

var requiredColumns = []string{"city", "country", "lat", "lng"}

// Load parses a worldcities-format CSV. The header must carry city,
// country, lat, and lng columns; extra columns are ignored and rows
// with unparsable coordinates are skipped.
func Load(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading city data header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	store := &Store{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading city data: %w", err)
		}

		lat, latErr := strconv.ParseFloat(record[cols["lat"]], 64)
		lng, lngErr := strconv.ParseFloat(record[cols["lng"]], 64)
		if latErr != nil || lngErr != nil {
			continue
		}
		store.cities = append(store.cities, City{
			Name:    record[cols["city"]],
			Country: record[cols["country"]],
			Lat:     lat,
			Lng:     lng,
		})
	}
	if len(store.cities) == 0 {
		return nil, ErrEmptyDataset
	}
	return store, nil
}

// LoadFile loads the dataset from a CSV on disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening city data: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len reports the number of loaded cities.
func (s *Store) Len() int { return len(s.cities) }

// Search returns up to limit cities whose name starts with query,
// optionally restricted to a country. Empty query and country match
// everything; matching is case-insensitive.
func (s *Store) Search(country, query string, limit int) []City {
	country = strings.ToLower(country)
	query = strings.ToLower(query)

	results := []City{}
	for _, city := range s.cities {
		if country != "" && strings.ToLower(city.Country) != country {
			continue
		}
		if query != "" && !strings.HasPrefix(strings.ToLower(city.Name), query) {
			continue
		}
		results = append(results, city)
		if len(results) >= limit {
			break
		}
	}
	return results
}

// Lookup finds the city with the exact (case-insensitive) name and
// country.
func (s *Store) Lookup(name, country string) (City, bool) {
	name = strings.ToLower(name)
	country = strings.ToLower(country)
	for _, city := range s.cities {
		if strings.ToLower(city.Name) == name && strings.ToLower(city.Country) == country {
			return city, true
		}
	}
	return City{}, false
}
