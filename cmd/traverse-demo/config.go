// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/traverse-foundation/traverse/session"
)

// DemoConfig is the optional YAML configuration for traverse-demo.
// Flags override anything set here.
type DemoConfig struct {
	// Rooms replaces the built-in sample rooms.
	Rooms []RoomConfig `yaml:"rooms"`

	// Trace is the trace file path.
	Trace string `yaml:"trace"`

	// Compression selects the trace frame compression: none, lz4,
	// or zstd.
	Compression string `yaml:"compression"`

	// History is the SQLite visit journal path.
	History string `yaml:"history"`

	// LogOutput receives JSON log records.
	LogOutput string `yaml:"log_output"`
}

// RoomConfig declares one resolvable room.
type RoomConfig struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Topic string `yaml:"topic"`
}

// loadConfig reads a DemoConfig from path. There is no automatic
// discovery: no path, no config.
func loadConfig(path string) (*DemoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg DemoConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for index, room := range cfg.Rooms {
		if room.ID == "" {
			return nil, fmt.Errorf("%s: rooms[%d]: id is required", path, index)
		}
	}
	return &cfg, nil
}

// roomInfos converts the configured rooms.
func (cfg *DemoConfig) roomInfos() []session.RoomInfo {
	rooms := make([]session.RoomInfo, 0, len(cfg.Rooms))
	for _, room := range cfg.Rooms {
		rooms = append(rooms, session.RoomInfo{ID: room.ID, Name: room.Name, Topic: room.Topic})
	}
	return rooms
}
