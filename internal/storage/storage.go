// Package storage persists per-guild bot state: the command-usage history the
// post-call observer writes, and the disabled command groups the group-access
// check consults. Backed by a JSON-file datastore keyed by guild id.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit = 20

// CommandHistoryRecord is one logged command execution.
type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything stored for one guild.
type Record struct {
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
	DisabledGroups  []string               `json:"disabled_groups"`
}

// Storage wraps the datastore with typed per-guild accessors.
type Storage struct {
	ds *datastore.DataStore
}

// New opens (or creates) the datastore file.
func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// Close flushes and closes the datastore.
func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		record := &Record{}
		s.ds.Add(guildID, record)
		return record, nil
	}

	// The datastore hands back what JSON reload produced; round-trip it into
	// the typed record.
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal guild record: %w", err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unmarshal guild record: %w", err)
	}
	return &record, nil
}

// LogCommand appends a command execution to the guild's bounded history.
func (s *Storage) LogCommand(guildID, channelID, userID, username, command string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistory = append(record.CommandsHistory, CommandHistoryRecord{
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		Command:   command,
		Datetime:  time.Now(),
	})
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}

	s.ds.Add(guildID, record)
	return nil
}

// CommandHistory returns the guild's logged executions, oldest first.
func (s *Storage) CommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

// DisableGroup marks a command group as disabled for the guild.
func (s *Storage) DisableGroup(guildID, group string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	for _, g := range record.DisabledGroups {
		if g == group {
			return nil
		}
	}
	record.DisabledGroups = append(record.DisabledGroups, group)
	s.ds.Add(guildID, record)
	return nil
}

// EnableGroup clears a group's disabled mark.
func (s *Storage) EnableGroup(guildID, group string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	updated := make([]string, 0, len(record.DisabledGroups))
	for _, g := range record.DisabledGroups {
		if g != group {
			updated = append(updated, g)
		}
	}
	record.DisabledGroups = updated
	s.ds.Add(guildID, record)
	return nil
}

// IsGroupDisabled reports whether a group is disabled for the guild.
func (s *Storage) IsGroupDisabled(guildID, group string) (bool, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return false, err
	}
	for _, g := range record.DisabledGroups {
		if g == group {
			return true, nil
		}
	}
	return false, nil
}
