// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package source

import (
	"errors"
	"fmt"
)

// InvalidFilePathError reports a base path with no file stem, or with an
// extension other than SMSPEC/UNSMRY/none.
type InvalidFilePathError struct {
	Path string
}

func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("source: invalid file path %q", e.Path)
}

// ErrDisconnected reports a network source whose connection dropped.
var ErrDisconnected = errors.New("source: network connection disconnected")

// ErrInvalidSmspecJSON reports a handshake document missing a required
// field.
var ErrInvalidSmspecJSON = errors.New("source: invalid SMSPEC handshake JSON")
