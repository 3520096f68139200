// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/fsnotify/fsnotify"

	"github.com/eclair-project/eclair/pkg/binary"
	"github.com/eclair-project/eclair/pkg/catalog"
)

const (
	smspecExt = ".SMSPEC"
	unsmryExt = ".UNSMRY"

	tailPollInterval = 100 * time.Millisecond
	rowChannelCap    = 10
)

// OpenFile derives the SMSPEC/UNSMRY companion paths from basePath, builds
// the catalog synchronously, does the bounded initial read of the data
// file, and returns an Initial ready to have its Worker started. name
// defaults to the file stem when not given.
func OpenFile(ctx context.Context, basePath, name string) (*Initial, string, error) {
	stem, err := basePathStem(basePath)
	if err != nil {
		return nil, "", err
	}
	smspecPath := stem + smspecExt
	unsmryPath := stem + unsmryExt

	if _, err := os.Stat(smspecPath); err != nil {
		return nil, "", &InvalidFilePathError{Path: smspecPath}
	}
	if _, err := os.Stat(unsmryPath); err != nil {
		return nil, "", &InvalidFilePathError{Path: unsmryPath}
	}

	smspecFile, err := os.Open(smspecPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", smspecPath, err)
	}
	defer smspecFile.Close()

	rd := binary.NewReader(smspecFile)
	summary, err := catalog.BuildSummary(ctx, rd)
	if err != nil {
		return nil, "", fmt.Errorf("building catalog from %s: %w", smspecPath, err)
	}

	if name == "" {
		name = filepath.Base(stem)
	}

	w := &fileWorker{
		name:       name,
		unsmryPath: unsmryPath,
		rows:       make(chan Row, rowChannelCap),
	}

	info, err := os.Stat(unsmryPath)
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", unsmryPath, err)
	}
	if err := w.initialRead(info.Size()); err != nil {
		return nil, "", fmt.Errorf("initial read of %s: %w", unsmryPath, err)
	}

	return &Initial{Summary: summary, Worker: w}, name, nil
}

// basePathStem validates and strips a known extension from basePath,
// rejecting paths with no stem or an unrecognized extension.
func basePathStem(basePath string) (string, error) {
	base := filepath.Base(basePath)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", &InvalidFilePathError{Path: basePath}
	}
	ext := filepath.Ext(basePath)
	switch strings.ToUpper(ext) {
	case "", strings.ToUpper(smspecExt), strings.ToUpper(unsmryExt):
		stem := strings.TrimSuffix(basePath, ext)
		if filepath.Base(stem) == "" || filepath.Base(stem) == "." {
			return "", &InvalidFilePathError{Path: basePath}
		}
		return stem, nil
	default:
		return "", &InvalidFilePathError{Path: basePath}
	}
}

// fileWorker tails a UNSMRY file, reading complete (SEQHDR?, MINISTEP,
// PARAMS) triplets and delivering them as Rows. Grounded on the donor's
// internal/util.fstat (stat-based existence/mtime checks) and
// internal/util.fswatcher (fsnotify singleton watcher) conventions.
type fileWorker struct {
	name       string
	unsmryPath string

	offset int64
	nSteps int

	rows chan Row
}

func (w *fileWorker) Rows() <-chan Row { return w.rows }

// initialRead consumes all complete triplets present at open time, bounded
// by the file size observed then; a trailing partial triplet is left
// unconsumed.
func (w *fileWorker) initialRead(bound int64) error {
	file, err := os.Open(w.unsmryPath)
	if err != nil {
		return err
	}
	defer file.Close()

	for {
		row, consumed, ok, err := readTripletBounded(file, w.offset, bound)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		w.offset += int64(consumed)
		w.nSteps++
		select {
		case w.rows <- row:
		default:
			cclog.Warnf("source[%s]: dropping initial row, channel full", w.name)
		}
	}
	return nil
}

// Run tails the data file: on each iteration it checks for cancellation,
// then either a prior success or an advanced mtime gates an attempted read;
// otherwise it sleeps tailPollInterval. A registered fsnotify watch can
// wake the loop early, but correctness never depends on it arriving.
func (w *fileWorker) Run(ctx context.Context) {
	defer close(w.rows)

	watchEvents := watchFile(w.unsmryPath)
	defer stopWatch(w.unsmryPath)

	var lastMtime time.Time
	lastAttemptOk := true

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		info, statErr := os.Stat(w.unsmryPath)
		mtimeAdvanced := statErr == nil && info.ModTime().After(lastMtime)

		if !lastAttemptOk && !mtimeAdvanced {
			select {
			case <-ctx.Done():
				return
			case <-watchEvents:
			case <-time.After(tailPollInterval):
			}
			continue
		}
		if statErr == nil {
			lastMtime = info.ModTime()
		}

		row, ok, err := w.attemptRead()
		if err != nil {
			cclog.Warnf("source[%s]: read error, will retry from offset %d: %v", w.name, w.offset, err)
			lastAttemptOk = false
			select {
			case <-ctx.Done():
				return
			case <-time.After(tailPollInterval):
			}
			continue
		}
		if !ok {
			lastAttemptOk = true
			select {
			case <-ctx.Done():
				return
			case <-watchEvents:
			case <-time.After(tailPollInterval):
			}
			continue
		}

		lastAttemptOk = true
		select {
		case w.rows <- row:
		case <-ctx.Done():
			return
		}
	}
}

// attemptRead opens the file, seeks to the last known-good offset, and
// tries to read exactly one more triplet. Any error leaves the offset
// untouched so the next attempt retries from the same known-good point.
func (w *fileWorker) attemptRead() (Row, bool, error) {
	file, err := os.Open(w.unsmryPath)
	if err != nil {
		return Row{}, false, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Row{}, false, err
	}

	row, consumed, ok, err := readTripletBounded(file, w.offset, info.Size())
	if err != nil {
		return Row{}, false, err
	}
	if !ok {
		return Row{}, false, nil
	}
	w.offset += int64(consumed)
	w.nSteps++
	return row, true, nil
}

// readTripletBounded seeks f to offset and attempts to read one
// (SEQHDR?, MINISTEP, PARAMS) triplet, refusing to consume past bound. It
// returns ok=false (no error) when fewer than bound-offset bytes remain to
// complete a triplet, per spec's "last partial triplet is not consumed".
func readTripletBounded(f *os.File, offset, bound int64) (Row, int, bool, error) {
	if offset >= bound {
		return Row{}, 0, false, nil
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return Row{}, 0, false, err
	}

	limited := io.LimitReader(f, bound-offset)
	rd := binary.NewReader(limited)
	ctx := context.Background()

	consumed := 0
	n, rec, err := rd.ReadRecord(ctx)
	if err != nil {
		if errors.Is(err, binary.ErrNotEnoughBytes) {
			return Row{}, 0, false, nil
		}
		return Row{}, 0, false, err
	}
	if rec == nil {
		return Row{}, 0, false, nil
	}
	consumed += n

	if rec.Name == "SEQHDR" {
		n, rec, err = rd.ReadRecord(ctx)
		if err != nil {
			if errors.Is(err, binary.ErrNotEnoughBytes) {
				return Row{}, 0, false, nil
			}
			return Row{}, 0, false, err
		}
		if rec == nil {
			return Row{}, 0, false, nil
		}
		consumed += n
	}
	if rec.Name != "MINISTEP" {
		return Row{}, 0, false, fmt.Errorf("source: expected MINISTEP, found %q", rec.Name)
	}
	ministepData, ok := rec.Data.(binary.IntData)
	if !ok || len(ministepData) != 1 {
		return Row{}, 0, false, errors.New("source: malformed MINISTEP record")
	}

	n, rec, err = rd.ReadRecord(ctx)
	if err != nil {
		if errors.Is(err, binary.ErrNotEnoughBytes) {
			return Row{}, 0, false, nil
		}
		return Row{}, 0, false, err
	}
	if rec == nil {
		return Row{}, 0, false, nil
	}
	consumed += n
	if rec.Name != "PARAMS" {
		return Row{}, 0, false, fmt.Errorf("source: expected PARAMS, found %q", rec.Name)
	}
	paramsData, ok := rec.Data.(binary.F32Data)
	if !ok {
		return Row{}, 0, false, errors.New("source: malformed PARAMS record")
	}

	return Row{Ministep: ministepData[0], Params: []float32(paramsData)}, consumed, true, nil
}

// watchFile and stopWatch are a thin seam over a per-path fsnotify watch,
// used only to shorten the poll sleep on a write event; tailing remains
// correct from polling alone if the watch can't be established. Each
// fileWorker owns its own watcher entry; fileWatchers is shared across
// concurrently running workers, so access is guarded by fileWatchersMu.
var (
	fileWatchersMu sync.Mutex
	fileWatchers   = map[string]*fsnotify.Watcher{}
)

func watchFile(path string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		cclog.Warnf("source: fsnotify unavailable for %s, polling only: %v", path, err)
		return ch
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		cclog.Warnf("source: fsnotify add failed for %s, polling only: %v", path, err)
		w.Close()
		return ch
	}
	fileWatchersMu.Lock()
	fileWatchers[path] = w
	fileWatchersMu.Unlock()
	go func() {
		for range w.Events {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch
}

func stopWatch(path string) {
	fileWatchersMu.Lock()
	w, ok := fileWatchers[path]
	if ok {
		delete(fileWatchers, path)
	}
	fileWatchersMu.Unlock()
	if ok {
		w.Close()
	}
}
