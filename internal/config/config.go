// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the optional JSON document describing the sources a
// SummaryManager should attach at startup, validated against an embedded
// JSON Schema before being decoded — the same two-step
// Validate-then-Decode pattern the donor codebase uses for its own
// component configs.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// FileSourceConfig describes one file-pair source to attach at startup.
type FileSourceConfig struct {
	BasePath string `json:"base-path"`
	Name     string `json:"name"`
}

// NetworkSourceConfig describes one network source to attach at startup.
type NetworkSourceConfig struct {
	Address  string `json:"address"`
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

// EclairConfig is the root configuration document.
type EclairConfig struct {
	FileSources     []FileSourceConfig    `json:"file-sources"`
	NetworkSources  []NetworkSourceConfig `json:"network-sources"`
	RefreshInterval string                `json:"refresh-interval"`
}

// Keys holds the process-wide configuration, populated by Init.
var Keys EclairConfig = EclairConfig{
	RefreshInterval: "1s",
}

// Init reads and validates the config file at path, if given. A missing
// path is not an error: Keys keeps its defaults, and the caller is expected
// to attach sources itself (e.g. via flags).
func Init(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := Validate(configSchema, raw); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return err
	}

	cclog.Infof("config: loaded %d file source(s), %d network source(s)", len(Keys.FileSources), len(Keys.NetworkSources))
	return nil
}
