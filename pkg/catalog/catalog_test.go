// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"testing"

	"github.com/eclair-project/eclair/pkg/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader replays a fixed slice of records, grounding tests on the same
// recordReader seam BuildSummary consumes rather than a real byte stream.
type fakeReader struct {
	records []*binary.Record
	pos     int
}

func (f *fakeReader) ReadRecord(ctx context.Context) (int, *binary.Record, error) {
	if f.pos >= len(f.records) {
		return 0, nil, nil
	}
	rec := f.records[f.pos]
	f.pos++
	return 0, rec, nil
}

func minimalMetadata() []*binary.Record {
	return []*binary.Record{
		{Name: "DIMENS", Data: binary.IntData{2, 10, 10, 5, 0, 0}},
		{Name: "STARTDAT", Data: binary.IntData{1, 3, 2005}},
		{Name: "KEYWORDS", Data: binary.CharData{"TIME", "FOPR"}},
		{Name: "WGNAMES", Data: binary.CharData{"", ""}},
		{Name: "NUMS", Data: binary.IntData{0, 0}},
		{Name: "UNITS", Data: binary.CharData{"DAYS", "SM3/DAY"}},
	}
}

// ScenarioA: minimal valid file set.
func TestBuildSummary_ScenarioA(t *testing.T) {
	r := &fakeReader{records: minimalMetadata()}
	s, err := BuildSummary(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, Dims{NX: 10, NY: 10, NZ: 5}, s.Dims)
	assert.Equal(t, StartDate{Day: 1, Month: 3, Year: 2005}, s.StartDate)
	assert.Equal(t, 0, s.TimeIndex)

	require.NoError(t, s.Append(0, []float32{1.0, 100.0}))
	assert.Equal(t, []float32{100.0}, s.Items[1].Values)
	assert.Equal(t, s.StartTimestamp+86400, s.Timestamps[0])
}

// ScenarioB: append across refresh.
func TestBuildSummary_ScenarioB(t *testing.T) {
	r := &fakeReader{records: minimalMetadata()}
	s, err := BuildSummary(context.Background(), r)
	require.NoError(t, err)

	require.NoError(t, s.Append(0, []float32{2.0, 50.0}))
	require.NoError(t, s.Append(1, []float32{3.0, 60.0}))

	assert.Equal(t, []float32{50.0, 60.0}, s.Items[1].Values)
	assert.Equal(t, []int64{s.StartTimestamp + 2*86400, s.StartTimestamp + 3*86400}, s.Timestamps)
}

// ScenarioC: mnemonic classification.
func TestClassify_ScenarioC(t *testing.T) {
	cases := []struct {
		name, wg  string
		index     int32
		qualifier ItemQualifier
	}{
		{"FOPR", "", 0, Field{}},
		{"WBHP", "W1", 0, Well{WgName: "W1"}},
		{"R_F", "", 1310731, CrossRegionFlow{From: 11, To: 30}},
		{"RGFT", ":+:+:+:+", 3, Region{WgName: nil, Index: 3}},
		{"BPR", "", 42, Block{Index: 42}},
		{"MEMGB", "", 0, Performance{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classify(c.name, c.wg, c.index)
			assert.Equal(t, c.qualifier, got)
		})
	}
}

// ScenarioD: duplicate metadata rejection.
func TestBuildSummary_ScenarioD_DuplicateDimens(t *testing.T) {
	records := append([]*binary.Record{
		{Name: "DIMENS", Data: binary.IntData{2, 10, 10, 5, 0, 0}},
	}, minimalMetadata()...)
	r := &fakeReader{records: records}
	_, err := BuildSummary(context.Background(), r)
	require.Error(t, err)
	var dup *RecordEncounteredTwiceError
	assert.ErrorAs(t, err, &dup)
}

// ScenarioE: out-of-order ministep.
func TestAppend_ScenarioE_OutOfOrderMinistep(t *testing.T) {
	r := &fakeReader{records: minimalMetadata()}
	s, err := BuildSummary(context.Background(), r)
	require.NoError(t, err)

	err = s.Append(1, []float32{1.0, 100.0})
	require.Error(t, err)
	var invalid *InvalidMinistepValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, invalid.Expected)
	assert.Equal(t, 1, invalid.Found)
	assert.Empty(t, s.Timestamps)
}

func TestItemId_CrossRegionRoundTrip(t *testing.T) {
	for from := int32(0); from < 3; from++ {
		for to := int32(-10); to < -7; to++ {
			index := from + 32768*(to+10)
			gotTo := index/32768 - 10
			gotFrom := index - 32768*(gotTo+10)
			assert.Equal(t, to, gotTo)
			assert.Equal(t, from, gotFrom)
		}
	}
}

func TestItemId_HashStableAcrossEqualIds(t *testing.T) {
	a := ItemId{Name: "WBHP", Qualifier: Well{WgName: "W1"}}
	b := ItemId{Name: "WBHP", Qualifier: Well{WgName: "W1"}}
	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))
}
