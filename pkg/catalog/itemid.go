// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// unknownWgName is the sentinel well/group name Eclipse uses in place of a
// real name when a record slot doesn't carry one.
const unknownWgName = ":+:+:+:+"

// ItemQualifier classifies an ItemId's kind. Go has no tagged unions, so the
// eleven-way variant from the mnemonic taxonomy is modeled as an interface with
// one concrete struct per kind, each carrying only the fields that kind
// needs.
type ItemQualifier interface {
	isItemQualifier()
	// tag returns a stable, structurally-unique string used for equality
	// and hashing across all qualifier kinds.
	tag() string
}

type Time struct{}
type Performance struct{}
type Field struct{}
type Aquifer struct{ Index int32 }
type Region struct {
	WgName *string
	Index  int32
}
type CrossRegionFlow struct{ From, To int32 }
type Well struct{ WgName string }
type Completion struct {
	WgName string
	Index  int32
}
type Group struct{ WgName string }
type Block struct{ Index int32 }
type Unrecognized struct {
	WgName string
	Index  int32
}

func (Time) isItemQualifier()            {}
func (Performance) isItemQualifier()     {}
func (Field) isItemQualifier()           {}
func (Aquifer) isItemQualifier()         {}
func (Region) isItemQualifier()          {}
func (CrossRegionFlow) isItemQualifier() {}
func (Well) isItemQualifier()            {}
func (Completion) isItemQualifier()      {}
func (Group) isItemQualifier()           {}
func (Block) isItemQualifier()           {}
func (Unrecognized) isItemQualifier()    {}

func (Time) tag() string        { return "Time" }
func (Performance) tag() string { return "Performance" }
func (Field) tag() string       { return "Field" }
func (q Aquifer) tag() string   { return "Aquifer/" + itoa(q.Index) }
func (q Region) tag() string {
	wg := ""
	if q.WgName != nil {
		wg = *q.WgName
	}
	return "Region/" + wg + "/" + itoa(q.Index)
}
func (q CrossRegionFlow) tag() string { return "CrossRegionFlow/" + itoa(q.From) + "/" + itoa(q.To) }
func (q Well) tag() string            { return "Well/" + q.WgName }
func (q Completion) tag() string      { return "Completion/" + q.WgName + "/" + itoa(q.Index) }
func (q Group) tag() string           { return "Group/" + q.WgName }
func (q Block) tag() string           { return "Block/" + itoa(q.Index) }
func (q Unrecognized) tag() string    { return "Unrecognized/" + q.WgName + "/" + itoa(q.Index) }

func itoa(v int32) string { return strconv.FormatInt(int64(v), 10) }

// ItemId identifies one time series: its mnemonic name plus its structural
// classification.
type ItemId struct {
	Name      string
	Qualifier ItemQualifier
}

// canonical returns a string uniquely determined by Name and Qualifier's
// structural fields, used as the basis for equality and hashing.
func (id ItemId) canonical() string {
	var b strings.Builder
	b.WriteString(id.Name)
	b.WriteByte('\x00')
	b.WriteString(id.Qualifier.tag())
	return b.String()
}

// Hash returns a content hash suitable for de-duplicating ItemIds across
// multiple summaries without an O(n^2) comparison scan.
func (id ItemId) Hash() uint64 {
	return xxhash.Sum64String(id.canonical())
}

// Equal reports whether two ItemIds are structurally identical.
func (id ItemId) Equal(other ItemId) bool {
	return id.canonical() == other.canonical()
}

var (
	timeKeywords = map[string]struct{}{
		"TIME": {}, "YEARS": {}, "DAY": {}, "MONTH": {}, "YEAR": {},
	}
	performanceKeywords = map[string]struct{}{
		"ELAPSED": {}, "MLINEARS": {}, "MSUMLINS": {}, "MSUMNEWT": {}, "NEWTON": {},
		"NLINEARS": {}, "TCPU": {}, "TCPUDAY": {}, "TCPUTS": {}, "TIMESTEP": {},
		"MEMGB": {}, "MAXMEMGB": {}, "NAIMFRAC": {},
	}
)

// classify derives the ItemQualifier for one NLIST slot following the
// mnemonic-naming taxonomy.
func classify(name, wg string, index int32) ItemQualifier {
	wgValid := wg != "" && wg != unknownWgName
	numValid := index > 0

	if _, ok := timeKeywords[name]; ok {
		return Time{}
	}
	if _, ok := performanceKeywords[name]; ok {
		return Performance{}
	}

	if len(name) == 0 {
		return Unrecognized{WgName: wg, Index: index}
	}

	switch name[0] {
	case 'F':
		return Field{}
	case 'A':
		if numValid {
			return Aquifer{Index: index}
		}
	case 'R':
		if isCrossRegionName(name) && numValid {
			to := index/32768 - 10
			from := index - 32768*(to+10)
			return CrossRegionFlow{From: from, To: to}
		}
		if numValid {
			var wgPtr *string
			if wgValid {
				w := wg
				wgPtr = &w
			}
			return Region{WgName: wgPtr, Index: index}
		}
	case 'W':
		if wgValid {
			return Well{WgName: wg}
		}
	case 'C':
		if wgValid && numValid {
			return Completion{WgName: wg, Index: index}
		}
	case 'G':
		if wgValid {
			return Group{WgName: wg}
		}
	case 'B':
		if numValid {
			return Block{Index: index}
		}
	}
	return Unrecognized{WgName: wg, Index: index}
}

// isCrossRegionName matches the "RNLF" mnemonic prefix, or a bare 3-byte
// "R?F" name (second byte anything, third 'F', nothing trailing) — the
// mnemonic shapes reserved for inter-region flow quantities. A longer name
// whose third byte happens to be 'F' (e.g. "RGFT") is a plain region item,
// not a cross-region flow: the short form only applies at exactly length 3.
func isCrossRegionName(name string) bool {
	if strings.HasPrefix(name, "RNLF") {
		return true
	}
	return len(name) == 3 && name[0] == 'R' && name[2] == 'F'
}
