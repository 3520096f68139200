// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package source

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSmspecJSON() smspecJSON {
	return smspecJSON{
		DIMENS:   []int32{2, 10, 10, 5, 0, 0},
		KEYWORDS: []string{"TIME", "FOPR"},
		NAMES:    []string{"", ""},
		NUMS:     []int32{0, 0},
		STARTDAT: []int32{1, 3, 2005},
		UNITS:    []string{"DAYS", "SM3/DAY"},
	}
}

func writeStepFrame(t *testing.T, conn net.Conn, ministep int32, params []float32) {
	t.Helper()
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(ministep))
	require.NoError(t, writeFrame(conn, idx[:]))

	body := make([]byte, len(params)*4)
	for i, v := range params {
		binary.BigEndian.PutUint32(body[i*4:i*4+4], math.Float32bits(v))
	}
	require.NoError(t, writeFrame(conn, body))
}

// startFakeSimulator runs a TCP listener and hands each accepted connection
// to behavior after reading its identity frame and replying with a valid
// handshake document. It returns the listener address and a stop function.
func startFakeSimulator(t *testing.T, behavior func(conn net.Conn, attempt int)) (string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var attempts int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			n := int(atomic.AddInt32(&attempts, 1))
			go func() {
				if _, err := readFrame(conn); err != nil {
					conn.Close()
					return
				}
				doc, _ := json.Marshal(validSmspecJSON())
				if err := writeFrame(conn, doc); err != nil {
					conn.Close()
					return
				}
				behavior(conn, n)
			}()
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

func TestOpenNetwork_HandshakeBuildsSummary(t *testing.T) {
	addr, stop := startFakeSimulator(t, func(conn net.Conn, attempt int) {
		<-make(chan struct{}) // keep the connection open until the test ends
	})
	defer stop()

	initial, name, err := OpenNetwork(context.Background(), addr, "ident", "")
	require.NoError(t, err)
	assert.Equal(t, addr, name)
	assert.Equal(t, 0, initial.Summary.TimeIndex)
	assert.Equal(t, []string{"DAYS", "SM3/DAY"}, []string{initial.Summary.Items[0].Unit, initial.Summary.Items[1].Unit})
}

func TestNetWorker_ReadStep(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go writeStepFrame(t, server, 3, []float32{4.5, 200.0})

	w := &netWorker{conn: client}
	row, err := w.readStep()
	require.NoError(t, err)
	assert.Equal(t, int32(3), row.Ministep)
	assert.Equal(t, []float32{4.5, 200.0}, row.Params)
}

func TestNetWorker_ReadStep_DisconnectIsErrDisconnected(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	server.Close()

	w := &netWorker{conn: client}
	_, err := w.readStep()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisconnected)
}

// TestNetWorker_Run_ReconnectsOnDisconnect covers the termination-with-restart
// choice documented in DESIGN.md: the first connection is closed by the peer
// right after the handshake with no step data, and Run must reconnect,
// replay the handshake, and resume delivering rows from the second
// connection rather than terminating the entry.
func TestNetWorker_Run_ReconnectsOnDisconnect(t *testing.T) {
	addr, stop := startFakeSimulator(t, func(conn net.Conn, attempt int) {
		if attempt == 1 {
			conn.Close()
			return
		}
		writeStepFrame(t, conn, 7, []float32{9.0, 300.0})
		<-make(chan struct{})
	})
	defer stop()

	initial, _, err := OpenNetwork(context.Background(), addr, "ident", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go initial.Worker.Run(ctx)

	require.Eventually(t, func() bool {
		select {
		case row := <-initial.Worker.Rows():
			return row.Ministep == 7 && row.Params[0] == 9.0
		default:
			return false
		}
	}, 3*time.Second, 20*time.Millisecond, "row from the reconnected second connection must eventually arrive")
}
