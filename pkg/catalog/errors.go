// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import "fmt"

// InvalidRecordDataTypeError reports a required record whose RecordData
// variant doesn't match what the catalog builder expects.
type InvalidRecordDataTypeError struct {
	Name     string
	Expected string
	Found    string
}

func (e *InvalidRecordDataTypeError) Error() string {
	return fmt.Sprintf("catalog: record %q: expected %s data, found %s", e.Name, e.Expected, e.Found)
}

// RecordEncounteredTwiceError reports a required record seen more than once.
type RecordEncounteredTwiceError struct {
	Name string
}

func (e *RecordEncounteredTwiceError) Error() string {
	return fmt.Sprintf("catalog: record %q encountered twice", e.Name)
}

// UnexpectedRecordDataLengthError reports a required record whose element
// count doesn't match the expected length (a fixed count, or NLIST).
type UnexpectedRecordDataLengthError struct {
	Name     string
	Expected int
	Found    int
}

func (e *UnexpectedRecordDataLengthError) Error() string {
	return fmt.Sprintf("catalog: record %q: expected length %d, found %d", e.Name, e.Expected, e.Found)
}

// MissingRecordError reports a required record that never appeared before
// the metadata whitelist was exhausted.
type MissingRecordError struct {
	Name string
}

func (e *MissingRecordError) Error() string {
	return fmt.Sprintf("catalog: missing required record %q", e.Name)
}

// InvalidMinistepValueError reports an appended step whose MINISTEP didn't
// match the current row count.
type InvalidMinistepValueError struct {
	Expected int
	Found    int
}

func (e *InvalidMinistepValueError) Error() string {
	return fmt.Sprintf("catalog: invalid ministep value: expected %d, found %d", e.Expected, e.Found)
}
