// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package manager implements the SummaryManager: it owns multiple
// Summaries by name, spawns one background worker per attached source,
// merges newly produced rows into their owned Summary on refresh, and
// answers typed queries. Lifecycle is grounded on the donor's
// internal/memorystore.Init/Shutdown convention (a context.WithCancel per
// worker plus a done channel that Remove waits on).
package manager

import (
	"context"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/eclair-project/eclair/pkg/catalog"
	"github.com/eclair-project/eclair/internal/source"
)

// entry binds one attached summary to its background worker and channels.
type entry struct {
	name    string
	summary *catalog.Summary
	worker  source.Worker
	rows    <-chan source.Row
	cancel  context.CancelFunc
	done    chan struct{}
}

// SummaryManager owns an ordered collection of entries. It is the only
// mutator of each owned Summary, and it mutates only during Refresh.
// Concurrent reads of a Summary's timestamps/values between Refresh calls
// are safe without additional locking as long as the manager's query
// methods are the only caller (the single-threaded boundary described in
// the concurrency model); callers that expose Refresh/query across
// goroutines must add their own lock around the manager.
type SummaryManager struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*entry
}

// New constructs an empty SummaryManager.
func New() *SummaryManager {
	return &SummaryManager{entries: make(map[string]*entry)}
}

// AddFromFiles builds the catalog for a file-pair source synchronously on
// the caller's goroutine (so construction errors propagate immediately),
// then starts its background tailing worker.
func (m *SummaryManager) AddFromFiles(ctx context.Context, basePath, name string) (string, error) {
	initial, resolvedName, err := source.OpenFile(ctx, basePath, name)
	if err != nil {
		return "", err
	}
	return resolvedName, m.addEntry(resolvedName, initial)
}

// AddFromNetwork performs the network handshake synchronously, then starts
// the background streaming worker.
func (m *SummaryManager) AddFromNetwork(ctx context.Context, serverAddr, identity, name string) (string, error) {
	initial, resolvedName, err := source.OpenNetwork(ctx, serverAddr, identity, name)
	if err != nil {
		return "", err
	}
	return resolvedName, m.addEntry(resolvedName, initial)
}

func (m *SummaryManager) addEntry(name string, initial *source.Initial) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[name]; exists {
		name = name + "#2"
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	e := &entry{
		name:    name,
		summary: initial.Summary,
		worker:  initial.Worker,
		rows:    initial.Worker.Rows(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(e.done)
		initial.Worker.Run(workerCtx)
	}()

	m.entries[name] = e
	m.order = append(m.order, name)
	return nil
}

// Remove sends termination to the entry's worker, waits for it to exit,
// and drops the entry. An already-gone worker is a successful removal; the
// operation never panics on a missing or already-terminated entry.
func (m *SummaryManager) Remove(name string) {
	m.mu.Lock()
	e, ok := m.entries[name]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.entries, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	e.cancel()
	<-e.done
}

// Refresh drains every entry's channel non-blockingly into its Summary.
// It never blocks on an empty or full channel and reports whether any new
// rows were appended.
func (m *SummaryManager) Refresh() bool {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	any := false
	for _, e := range entries {
	drain:
		for {
			select {
			case row, ok := <-e.rows:
				if !ok {
					break drain
				}
				if err := e.summary.Append(row.Ministep, row.Params); err != nil {
					cclog.Warnf("manager: dropping row for %q: %v", e.name, err)
					continue
				}
				any = true
			default:
				break drain
			}
		}
	}
	return any
}

// Length returns the number of attached entries.
func (m *SummaryManager) Length() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Name returns the name of the idx-th entry in attach order.
func (m *SummaryManager) Name(idx int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx < 0 || idx >= len(m.order) {
		return "", false
	}
	return m.order[idx], true
}

// SummaryNames returns all attached entry names in attach order.
func (m *SummaryManager) SummaryNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *SummaryManager) summaryByIndexOrName(idxOrName any) (*catalog.Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := idxOrName.(type) {
	case int:
		if v < 0 || v >= len(m.order) {
			return nil, false
		}
		e, ok := m.entries[m.order[v]]
		if !ok {
			return nil, false
		}
		return e.summary, true
	case string:
		e, ok := m.entries[v]
		if !ok {
			return nil, false
		}
		return e.summary, true
	}
	return nil, false
}

// Timestamps returns the idx-th summary's timestamp sequence.
func (m *SummaryManager) Timestamps(idx int) []int64 {
	s, ok := m.summaryByIndexOrName(idx)
	if !ok {
		return nil
	}
	return s.Timestamps
}
