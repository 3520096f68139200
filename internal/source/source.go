// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package source implements the two background-reader variants the manager
// attaches to a Summary: a tailing file pair and a duplex network stream.
// Both deliver rows over the same channel shape so the manager can treat
// them uniformly.
package source

import (
	"context"

	"github.com/eclair-project/eclair/pkg/catalog"
)

// Row is one appended time step, ready to hand to Summary.Append.
type Row struct {
	Ministep int32
	Params   []float32
}

// Worker is the capability both source variants provide: run until ctx is
// cancelled or the underlying stream/connection is exhausted, pushing rows
// onto the channel returned by Rows. Implementations never alias the
// Summary they initialized from; they only ever produce Rows.
type Worker interface {
	// Rows returns the channel new rows are delivered on. Capacity 10,
	// per the manager's bounded-MPSC contract.
	Rows() <-chan Row
	// Run blocks until ctx is done or the source is exhausted/disconnected
	// beyond recovery, then closes the Rows channel.
	Run(ctx context.Context)
}

// Initial is the result of synchronously building the catalog for a new
// entry, before its background worker is started.
type Initial struct {
	Summary *catalog.Summary
	Worker  Worker
}
