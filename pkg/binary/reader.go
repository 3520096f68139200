// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package binary

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader decodes a sequence of Records from an underlying byte stream. It
// does not assume the stream is seekable; callers that need to recover
// after an error (e.g. a file source re-reading from a known-good offset)
// must reopen or re-seek the stream themselves and construct a new Reader.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for record-at-a-time decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadRecord reads the next Record. A return of (0, nil, nil) indicates a
// clean end of stream at a record boundary. Any other I/O shortage is
// reported as a non-nil error wrapping ErrNotEnoughBytes.
func (rd *Reader) ReadRecord(ctx context.Context) (int, *Record, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	header, err := readBlock(rd.r, true)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, nil
		}
		return 0, nil, err
	}
	if len(header) != 16 {
		return 0, nil, &RecordByteLengthMismatchError{Expected: 16, Found: len(header)}
	}
	consumed := 8 + len(header)

	name := strings.TrimRight(string(header[0:8]), " ")
	nElements := int(int32(binary.BigEndian.Uint32(header[8:12])))
	typeID := string(header[12:16])

	elementSize, blockLength, err := typeInfoFor(typeID)
	if err != nil {
		return 0, nil, err
	}

	if typeID == "MESS" {
		return consumed, &Record{Name: name, Data: MessageData{}}, nil
	}

	raw, nSubBlocks, err := readTypedBody(rd.r, nElements, elementSize, blockLength)
	if err != nil {
		return 0, nil, fmt.Errorf("reading body of record %q: %w", name, err)
	}
	consumed += len(raw) + nSubBlocks*8

	data, err := decodeBody(typeID, raw, elementSize)
	if err != nil {
		return 0, nil, fmt.Errorf("decoding body of record %q: %w", name, err)
	}

	return consumed, &Record{Name: name, Data: data}, nil
}

func typeInfoFor(typeID string) (elementSize, blockLength int, err error) {
	switch typeID {
	case "INTE", "REAL", "LOGI":
		return 4, numBlockSize, nil
	case "DOUB":
		return 8, numBlockSize, nil
	case "MESS":
		return 0, 0, nil
	case "CHAR":
		return 8, strBlockSize, nil
	}
	if strings.HasPrefix(typeID, "C0") {
		digits := typeID[2:]
		if len(digits) != 2 || digits[0] < '0' || digits[0] > '9' || digits[1] < '0' || digits[1] > '9' {
			return 0, 0, &InvalidC0nnLengthError{TypeID: typeID}
		}
		n, _ := strconv.Atoi(digits)
		return n, strBlockSize, nil
	}
	return 0, 0, &InvalidDataTypeError{TypeID: typeID}
}

func readTypedBody(r io.Reader, nElements, elementSize, blockLength int) ([]byte, int, error) {
	nSubBlocks := 0
	if nElements > 0 {
		nSubBlocks = 1 + (nElements-1)/blockLength
	}
	raw, err := readSubBlocks(r, nElements, elementSize, blockLength)
	return raw, nSubBlocks, err
}

func decodeBody(typeID string, raw []byte, elementSize int) (RecordData, error) {
	switch {
	case typeID == "INTE":
		return IntData(decodeI32(raw)), nil
	case typeID == "LOGI":
		return BoolData(decodeI32(raw)), nil
	case typeID == "REAL":
		return F32Data(decodeF32(raw)), nil
	case typeID == "DOUB":
		return F64Data(decodeF64(raw)), nil
	case typeID == "CHAR" || strings.HasPrefix(typeID, "C0"):
		strs, err := decodeChars(raw, elementSize)
		if err != nil {
			return nil, err
		}
		return CharData(strs), nil
	}
	return nil, &InvalidDataTypeError{TypeID: typeID}
}

func decodeI32(raw []byte) []int32 {
	out := make([]int32, len(raw)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(raw[i*4 : i*4+4]))
	}
	return out
}

func decodeF32(raw []byte) []float32 {
	out := make([]float32, len(raw)/4)
	for i := range out {
		bits := binary.BigEndian.Uint32(raw[i*4 : i*4+4])
		out[i] = float32FromBits(bits)
	}
	return out
}

func decodeF64(raw []byte) []float64 {
	out := make([]float64, len(raw)/8)
	for i := range out {
		bits := binary.BigEndian.Uint64(raw[i*8 : i*8+8])
		out[i] = float64FromBits(bits)
	}
	return out
}

func decodeChars(raw []byte, elementSize int) ([]string, error) {
	if elementSize == 0 {
		return nil, nil
	}
	out := make([]string, len(raw)/elementSize)
	for i := range out {
		chunk := raw[i*elementSize : i*elementSize+elementSize]
		if !isValidUTF8(chunk) {
			return nil, ErrInvalidStringBytes
		}
		out[i] = strings.TrimRight(string(chunk), " ")
	}
	return out, nil
}
