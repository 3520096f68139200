// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import "math"

// Append validates and pushes one new row of per-item values. ministep must
// equal the current row count (the step index of the row about to be
// appended); params must have one value per item, in slot order. On any
// validation failure, no state is mutated — the append is all-or-nothing.
func (s *Summary) Append(ministep int32, params []float32) error {
	expected := len(s.Timestamps)
	if int(ministep) != expected {
		return &InvalidMinistepValueError{Expected: expected, Found: int(ministep)}
	}
	if len(params) != len(s.Items) {
		return &UnexpectedRecordDataLengthError{Name: "PARAMS", Expected: len(s.Items), Found: len(params)}
	}

	newTime := params[s.TimeIndex]
	newTs := s.StartTimestamp + int64(math.Floor(float64(newTime)*86400))

	s.Timestamps = append(s.Timestamps, newTs)
	for i, v := range params {
		s.Items[i].Values = append(s.Items[i].Values, v)
	}
	return nil
}
