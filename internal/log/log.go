// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package log wires process-wide logging to cclog, reading the verbosity
// and style knobs from the environment per the external-interfaces
// contract (ECLAIR_LOG_LEVEL, ECLAIR_LOG_STYLE).
package log

import (
	"os"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// Init configures cclog from ECLAIR_LOG_LEVEL (default "info") and
// ECLAIR_LOG_STYLE ("json" enables structured output; anything else,
// including unset, is plain).
func Init() {
	level := os.Getenv("ECLAIR_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	style := os.Getenv("ECLAIR_LOG_STYLE")
	cclog.Init(level, style == "json")
}
