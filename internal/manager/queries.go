// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager

import "github.com/eclair-project/eclair/pkg/catalog"

// AllItemIds returns the union of recognized ItemIds across every attached
// summary. Unrecognized items are filtered out, per spec. Dedup uses the
// xxhash-keyed canonical form rather than an O(n^2) comparison scan.
func (m *SummaryManager) AllItemIds() []catalog.ItemId {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	seen := make(map[uint64]catalog.ItemId)
	for _, e := range entries {
		for _, id := range e.summary.ItemIds() {
			if _, ok := id.Qualifier.(catalog.Unrecognized); ok {
				continue
			}
			if _, ok := seen[id.Hash()]; !ok {
				seen[id.Hash()] = id
			}
		}
	}

	out := make([]catalog.ItemId, 0, len(seen))
	for _, id := range seen {
		out = append(out, id)
	}
	return out
}

func (m *SummaryManager) valuesFor(idx int, id catalog.ItemId) []float32 {
	s, ok := m.summaryByIndexOrName(idx)
	if !ok {
		return nil
	}
	return s.ValuesFor(id)
}

// TimeItem returns the TIME item's values for the idx-th summary.
func (m *SummaryManager) TimeItem(idx int) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: "TIME", Qualifier: catalog.Time{}})
}

// PerformanceItem returns a named performance item's values.
func (m *SummaryManager) PerformanceItem(idx int, name string) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Performance{}})
}

// FieldItem returns a named field item's values.
func (m *SummaryManager) FieldItem(idx int, name string) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Field{}})
}

// AquiferItem returns a named aquifer item's values.
func (m *SummaryManager) AquiferItem(idx int, name string, index int32) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Aquifer{Index: index}})
}

// BlockItem returns a named block item's values.
func (m *SummaryManager) BlockItem(idx int, name string, index int32) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Block{Index: index}})
}

// WellItem returns a named well item's values.
func (m *SummaryManager) WellItem(idx int, name, wgName string) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Well{WgName: wgName}})
}

// GroupItem returns a named group item's values.
func (m *SummaryManager) GroupItem(idx int, name, wgName string) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Group{WgName: wgName}})
}

// RegionItem returns a named region item's values. Queries are by index
// only: the wg_name qualifier field is always nil on the query side.
func (m *SummaryManager) RegionItem(idx int, name string, index int32) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Region{WgName: nil, Index: index}})
}

// CrossRegionItem returns a named cross-region-flow item's values, given
// the packed wire index (decoded with the inverse of the §4.2 encoding).
func (m *SummaryManager) CrossRegionItem(idx int, name string, packedIndex int32) []float32 {
	to := packedIndex/32768 - 10
	from := packedIndex - 32768*(to+10)
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.CrossRegionFlow{From: from, To: to}})
}

// CompletionItem returns a named completion item's values.
func (m *SummaryManager) CompletionItem(idx int, name, wgName string, index int32) []float32 {
	return m.valuesFor(idx, catalog.ItemId{Name: name, Qualifier: catalog.Completion{WgName: wgName, Index: index}})
}
