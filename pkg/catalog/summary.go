// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package catalog builds and grows a validated time-series catalog (a
// Summary) from the metadata and data records decoded by pkg/binary.
package catalog

import "time"

// Dims holds the three grid extents from DIMENS.
type Dims struct {
	NX, NY, NZ int32
}

// StartDate is the six-field simulation start date/time from STARTDAT.
type StartDate struct {
	Day, Month, Year int32
	Hour, Minute     int32
	Microsecond      int32
}

// SummaryItem is one named time series: a unit string and its values, one
// per appended row.
type SummaryItem struct {
	Unit   string
	Values []float32
}

// Summary is the root catalog: grid dims, start date, item identities, and
// their accumulated time series. It is constructed once from a validated
// metadata block and thereafter grows only via Append. It is owned
// exclusively by one SummaryManager entry; it is not safe for concurrent
// mutation from multiple goroutines.
type Summary struct {
	Dims           Dims
	StartDate      StartDate
	StartTimestamp int64

	TimeIndex int

	itemIds map[string]int // canonical ItemId string -> slot
	ids     []ItemId        // slot -> ItemId, parallel to Items
	Items   []SummaryItem

	Timestamps []int64
}

// ItemIds returns the catalog's full ordered list of item identities,
// including Unrecognized ones.
func (s *Summary) ItemIds() []ItemId {
	out := make([]ItemId, len(s.ids))
	copy(out, s.ids)
	return out
}

// AllUnits returns a map from ItemId to unit string for every item in the
// catalog.
func (s *Summary) AllUnits() map[ItemId]string {
	out := make(map[ItemId]string, len(s.ids))
	for i, id := range s.ids {
		out[id] = s.Items[i].Unit
	}
	return out
}

// slotFor returns the slot index for an ItemId, and whether it was found.
func (s *Summary) slotFor(id ItemId) (int, bool) {
	idx, ok := s.itemIds[id.canonical()]
	return idx, ok
}

// ValuesFor returns the value slice for the given identity, or nil if the
// summary has no such item.
func (s *Summary) ValuesFor(id ItemId) []float32 {
	idx, ok := s.slotFor(id)
	if !ok {
		return nil
	}
	return s.Items[idx].Values
}

func startTimestamp(d StartDate) int64 {
	t := time.Date(int(d.Year), time.Month(d.Month), int(d.Day), int(d.Hour), int(d.Minute), 0, int(d.Microsecond)*1000, time.UTC)
	return t.Unix()
}
