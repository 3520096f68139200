// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command eclair attaches the file and network sources named in an optional
// config document to a SummaryManager and keeps it refreshed on a ticker
// until interrupted. It is ambient wiring only: all decoding, cataloging
// and source logic lives in the pkg/ and internal/ packages.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/eclair-project/eclair/internal/config"
	"github.com/eclair-project/eclair/internal/log"
	"github.com/eclair-project/eclair/internal/manager"
)

func main() {
	configFile := flag.String("config", "", "Specify path to config.json")
	flag.Parse()

	log.Init()

	if err := config.Init(*configFile); err != nil {
		cclog.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := manager.New()
	attachSources(ctx, m)

	refreshInterval, err := time.ParseDuration(config.Keys.RefreshInterval)
	if err != nil {
		cclog.Fatalf("config: invalid refresh-interval %q: %v", config.Keys.RefreshInterval, err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	cclog.Infof("eclair: attached %d summary source(s), refreshing every %s", m.Length(), refreshInterval)

	for {
		select {
		case <-ticker.C:
			if m.Refresh() {
				logState(m)
			}
		case <-sigs:
			cclog.Info("eclair: shutting down")
			for _, name := range m.SummaryNames() {
				m.Remove(name)
			}
			return
		}
	}
}

func attachSources(ctx context.Context, m *manager.SummaryManager) {
	for _, fs := range config.Keys.FileSources {
		name, err := m.AddFromFiles(ctx, fs.BasePath, fs.Name)
		if err != nil {
			cclog.Errorf("eclair: attaching file source %q: %v", fs.BasePath, err)
			continue
		}
		cclog.Infof("eclair: attached file source %q as %q", fs.BasePath, name)
	}

	for _, ns := range config.Keys.NetworkSources {
		name, err := m.AddFromNetwork(ctx, ns.Address, ns.Identity, ns.Name)
		if err != nil {
			cclog.Errorf("eclair: attaching network source %q: %v", ns.Address, err)
			continue
		}
		cclog.Infof("eclair: attached network source %q as %q", ns.Address, name)
	}
}

func logState(m *manager.SummaryManager) {
	for idx, name := range m.SummaryNames() {
		ts := m.Timestamps(idx)
		cclog.Infof("eclair: %q now has %d timestamp(s)", name, len(ts))
	}
}
