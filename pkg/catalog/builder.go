// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"context"

	"github.com/eclair-project/eclair/pkg/binary"
)

// smspecWhitelist is the set of metadata record names. Anything outside it
// marks the end of the metadata segment (and the start of a data segment,
// when both are concatenated in one stream).
var smspecWhitelist = map[string]struct{}{
	"INTEHEAD": {}, "RESTART": {}, "DIMENS": {}, "KEYWORDS": {}, "WGNAMES": {},
	"NAMES": {}, "NUMS": {}, "LGRS": {}, "NUMLX": {}, "NUMLY": {}, "NUMLZ": {},
	"LENGTHS": {}, "LENUNITS": {}, "MEASRMNT": {}, "UNITS": {}, "STARTDAT": {},
	"LGRNAMES": {}, "LGRVEC": {}, "LGRTIMES": {}, "RUNTIMEI": {}, "RUNTIMED": {},
	"STEPRESN": {}, "XCOORD": {}, "YCOORD": {}, "TIMESTMP": {},
}

// recordReader is the minimal surface BuildSummary needs from a
// binary.Reader, allowing tests to substitute a fake.
type recordReader interface {
	ReadRecord(ctx context.Context) (int, *binary.Record, error)
}

// smspecRecords accumulates the raw required records before validation.
type smspecRecords struct {
	dimens   []int32
	startdat []int32
	keywords []string
	wgnames  []string
	nums     []int32
	units    []string

	seenDimens, seenStartdat, seenKeywords, seenWgnames, seenNums, seenUnits bool
}

// BuildSummary reads records from r until either all required records are
// populated or a non-whitelisted record name is encountered, then validates
// and constructs a Summary. A non-whitelisted record that ends the loop has
// already been read from r and is discarded.
func BuildSummary(ctx context.Context, r recordReader) (*Summary, error) {
	var acc smspecRecords

	for {
		_, rec, err := r.ReadRecord(ctx)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		if _, ok := smspecWhitelist[rec.Name]; !ok {
			break
		}
		if err := acc.absorb(rec); err != nil {
			return nil, err
		}
		if acc.seenDimens && acc.seenStartdat && acc.seenKeywords && acc.seenWgnames && acc.seenNums && acc.seenUnits {
			break
		}
	}

	return acc.toSummary()
}

// RawFields is the metadata document shape shared by the file source
// (binary records) and the network source (a JSON handshake): the same six
// required fields, already split into typed slices.
type RawFields struct {
	Dimens   []int32
	Startdat []int32
	Keywords []string
	Wgnames  []string
	Nums     []int32
	Units    []string
}

// BuildSummaryFromFields validates and constructs a Summary directly from
// already-decoded fields, the path the network source's JSON handshake
// feeds through so both transports share one validation implementation.
func BuildSummaryFromFields(f RawFields) (*Summary, error) {
	acc := smspecRecords{
		dimens: f.Dimens, startdat: f.Startdat, keywords: f.Keywords,
		wgnames: f.Wgnames, nums: f.Nums, units: f.Units,
		seenDimens: f.Dimens != nil, seenStartdat: f.Startdat != nil,
		seenKeywords: f.Keywords != nil, seenWgnames: f.Wgnames != nil,
		seenNums: f.Nums != nil, seenUnits: f.Units != nil,
	}
	return acc.toSummary()
}

func (acc *smspecRecords) absorb(rec *binary.Record) error {
	switch rec.Name {
	case "DIMENS":
		if acc.seenDimens {
			return &RecordEncounteredTwiceError{Name: "DIMENS"}
		}
		data, ok := rec.Data.(binary.IntData)
		if !ok {
			return &InvalidRecordDataTypeError{Name: "DIMENS", Expected: "Int", Found: typeName(rec.Data)}
		}
		acc.dimens = []int32(data)
		acc.seenDimens = true
	case "STARTDAT":
		if acc.seenStartdat {
			return &RecordEncounteredTwiceError{Name: "STARTDAT"}
		}
		data, ok := rec.Data.(binary.IntData)
		if !ok {
			return &InvalidRecordDataTypeError{Name: "STARTDAT", Expected: "Int", Found: typeName(rec.Data)}
		}
		acc.startdat = []int32(data)
		acc.seenStartdat = true
	case "KEYWORDS":
		if acc.seenKeywords {
			return &RecordEncounteredTwiceError{Name: "KEYWORDS"}
		}
		data, ok := rec.Data.(binary.CharData)
		if !ok {
			return &InvalidRecordDataTypeError{Name: "KEYWORDS", Expected: "Chars", Found: typeName(rec.Data)}
		}
		acc.keywords = []string(data)
		acc.seenKeywords = true
	case "WGNAMES", "NAMES":
		// WGNAMES and NAMES are declared aliases, not duplicates: the
		// first one seen wins and neither triggers RecordEncounteredTwice
		// against the other.
		if acc.seenWgnames {
			break
		}
		data, ok := rec.Data.(binary.CharData)
		if !ok {
			return &InvalidRecordDataTypeError{Name: rec.Name, Expected: "Chars", Found: typeName(rec.Data)}
		}
		acc.wgnames = []string(data)
		acc.seenWgnames = true
	case "NUMS":
		if acc.seenNums {
			return &RecordEncounteredTwiceError{Name: "NUMS"}
		}
		data, ok := rec.Data.(binary.IntData)
		if !ok {
			return &InvalidRecordDataTypeError{Name: "NUMS", Expected: "Int", Found: typeName(rec.Data)}
		}
		acc.nums = []int32(data)
		acc.seenNums = true
	case "UNITS":
		if acc.seenUnits {
			return &RecordEncounteredTwiceError{Name: "UNITS"}
		}
		data, ok := rec.Data.(binary.CharData)
		if !ok {
			return &InvalidRecordDataTypeError{Name: "UNITS", Expected: "Chars", Found: typeName(rec.Data)}
		}
		acc.units = []string(data)
		acc.seenUnits = true
	}
	return nil
}

func (acc *smspecRecords) toSummary() (*Summary, error) {
	if !acc.seenDimens {
		return nil, &MissingRecordError{Name: "DIMENS"}
	}
	if len(acc.dimens) != 6 {
		return nil, &UnexpectedRecordDataLengthError{Name: "DIMENS", Expected: 6, Found: len(acc.dimens)}
	}
	nlist := int(acc.dimens[0])
	dims := Dims{NX: acc.dimens[1], NY: acc.dimens[2], NZ: acc.dimens[3]}

	if !acc.seenStartdat {
		return nil, &MissingRecordError{Name: "STARTDAT"}
	}
	var startDate StartDate
	switch len(acc.startdat) {
	case 3:
		startDate = StartDate{Day: acc.startdat[0], Month: acc.startdat[1], Year: acc.startdat[2]}
	case 6:
		startDate = StartDate{
			Day: acc.startdat[0], Month: acc.startdat[1], Year: acc.startdat[2],
			Hour: acc.startdat[3], Minute: acc.startdat[4], Microsecond: acc.startdat[5],
		}
	default:
		return nil, &UnexpectedRecordDataLengthError{Name: "STARTDAT", Expected: 6, Found: len(acc.startdat)}
	}

	if !acc.seenKeywords {
		return nil, &MissingRecordError{Name: "KEYWORDS"}
	}
	if len(acc.keywords) != nlist {
		return nil, &UnexpectedRecordDataLengthError{Name: "KEYWORDS", Expected: nlist, Found: len(acc.keywords)}
	}
	if !acc.seenWgnames {
		return nil, &MissingRecordError{Name: "WGNAMES"}
	}
	if len(acc.wgnames) != nlist {
		return nil, &UnexpectedRecordDataLengthError{Name: "WGNAMES", Expected: nlist, Found: len(acc.wgnames)}
	}
	if !acc.seenNums {
		return nil, &MissingRecordError{Name: "NUMS"}
	}
	if len(acc.nums) != nlist {
		return nil, &UnexpectedRecordDataLengthError{Name: "NUMS", Expected: nlist, Found: len(acc.nums)}
	}
	if !acc.seenUnits {
		return nil, &MissingRecordError{Name: "UNITS"}
	}
	if len(acc.units) != nlist {
		return nil, &UnexpectedRecordDataLengthError{Name: "UNITS", Expected: nlist, Found: len(acc.units)}
	}

	s := &Summary{
		Dims:      dims,
		StartDate: startDate,
		itemIds:   make(map[string]int, nlist),
		ids:       make([]ItemId, nlist),
		Items:     make([]SummaryItem, nlist),
	}
	s.StartTimestamp = startTimestamp(startDate)

	for i := 0; i < nlist; i++ {
		qualifier := classify(acc.keywords[i], acc.wgnames[i], acc.nums[i])
		id := ItemId{Name: acc.keywords[i], Qualifier: qualifier}
		s.ids[i] = id
		s.itemIds[id.canonical()] = i
		s.Items[i] = SummaryItem{Unit: acc.units[i]}
	}

	timeIdx, ok := s.slotFor(ItemId{Name: "TIME", Qualifier: Time{}})
	if !ok {
		return nil, &MissingRecordError{Name: "TIME"}
	}
	s.TimeIndex = timeIdx

	return s, nil
}

func typeName(d binary.RecordData) string {
	switch d.(type) {
	case binary.IntData:
		return "Int"
	case binary.BoolData:
		return "Bool"
	case binary.CharData:
		return "Chars"
	case binary.F32Data:
		return "F32"
	case binary.F64Data:
		return "F64"
	case binary.MessageData:
		return "Message"
	default:
		return "Unknown"
	}
}
