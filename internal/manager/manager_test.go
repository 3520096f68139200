// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclair-project/eclair/pkg/catalog"
	"github.com/eclair-project/eclair/internal/source"
)

// fakeWorker delivers a fixed, pre-seeded sequence of rows and then blocks
// until its context is cancelled, mirroring a live tailing worker's shape
// without touching the filesystem or network.
type fakeWorker struct {
	rows chan source.Row
	seed []source.Row
}

func newFakeWorker(seed []source.Row) *fakeWorker {
	return &fakeWorker{rows: make(chan source.Row, 10), seed: seed}
}

func (w *fakeWorker) Rows() <-chan source.Row { return w.rows }

func (w *fakeWorker) Run(ctx context.Context) {
	defer close(w.rows)
	for _, row := range w.seed {
		select {
		case w.rows <- row:
		case <-ctx.Done():
			return
		}
	}
	<-ctx.Done()
}

func minimalSummary(t *testing.T) *catalog.Summary {
	t.Helper()
	s, err := catalog.BuildSummaryFromFields(catalog.RawFields{
		Dimens:   []int32{2, 10, 10, 5, 0, 0},
		Startdat: []int32{1, 3, 2005},
		Keywords: []string{"TIME", "FOPR"},
		Wgnames:  []string{"", ""},
		Nums:     []int32{0, 0},
		Units:    []string{"DAYS", "SM3/DAY"},
	})
	require.NoError(t, err)
	return s
}

func TestManager_AddRefreshRemove(t *testing.T) {
	m := New()

	worker := newFakeWorker([]source.Row{
		{Ministep: 0, Params: []float32{1.0, 100.0}},
		{Ministep: 1, Params: []float32{2.0, 200.0}},
	})
	initial := &source.Initial{Summary: minimalSummary(t), Worker: worker}
	require.NoError(t, m.addEntry("test", initial))

	require.Eventually(t, func() bool { return m.Refresh() }, time.Second, time.Millisecond)
	assert.Equal(t, 1, m.Length())

	values := m.FieldItem(0, "FOPR")
	assert.Equal(t, []float32{100.0, 200.0}, values)

	m.Remove("test")
	assert.Equal(t, 0, m.Length())
}

func TestManager_AllItemIdsFiltersUnrecognized(t *testing.T) {
	s := minimalSummary(t)
	m := New()
	worker := newFakeWorker(nil)
	require.NoError(t, m.addEntry("test", &source.Initial{Summary: s, Worker: worker}))

	ids := m.AllItemIds()
	for _, id := range ids {
		_, unrecognized := id.Qualifier.(catalog.Unrecognized)
		assert.False(t, unrecognized)
	}
	assert.Len(t, ids, 2)

	m.Remove("test")
}
