package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/r-Techsupport/turingbot/datastore"
)

const commandHistoryLimit = 50

// Storage is the bot's persistence layer: command usage history and per-user
// notes on top of the JSON datastore.
type Storage struct {
	ds *datastore.Store
}

// CommandRecord is one executed command, kept for the history log.
type CommandRecord struct {
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

// Note is one saved user note.
type Note struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// New opens the storage at filePath.
func New(filePath string) (*Storage, error) {
	ds, err := datastore.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// Close flushes and closes the underlying store.
func (s *Storage) Close() error {
	return s.ds.Close()
}

// AppendCommandRecord adds a record to the history, trimming to the newest
// commandHistoryLimit entries.
func (s *Storage) AppendCommandRecord(rec CommandRecord) error {
	history, err := s.CommandHistory()
	if err != nil {
		return err
	}
	history = append(history, rec)
	if len(history) > commandHistoryLimit {
		history = history[len(history)-commandHistoryLimit:]
	}
	s.ds.Set("cmd_history", history)
	return nil
}

// CommandHistory returns the recorded command history, oldest first.
func (s *Storage) CommandHistory() ([]CommandRecord, error) {
	var history []CommandRecord
	if err := s.get("cmd_history", &history); err != nil {
		return nil, err
	}
	return history, nil
}

// AddNote stores a note for the user and returns its 1-based position.
func (s *Storage) AddNote(userID, text string) (int, error) {
	notes, err := s.Notes(userID)
	if err != nil {
		return 0, err
	}
	notes = append(notes, Note{Text: text, CreatedAt: time.Now()})
	s.ds.Set(noteKey(userID), notes)
	return len(notes), nil
}

// Notes returns the user's notes in creation order.
func (s *Storage) Notes(userID string) ([]Note, error) {
	var notes []Note
	if err := s.get(noteKey(userID), &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteNote removes the user's note at the 1-based position.
func (s *Storage) DeleteNote(userID string, position int) error {
	notes, err := s.Notes(userID)
	if err != nil {
		return err
	}
	if position < 1 || position > len(notes) {
		return fmt.Errorf("no note #%d", position)
	}
	notes = append(notes[:position-1], notes[position:]...)
	s.ds.Set(noteKey(userID), notes)
	return nil
}

func noteKey(userID string) string {
	return "notes:" + userID
}

// get reads a key and decodes it into out via JSON round-trip, since values
// loaded from disk come back as generic maps/slices.
func (s *Storage) get(key string, out any) error {
	raw, ok := s.ds.Get(key)
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode stored value %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode stored value %q: %w", key, err)
	}
	return nil
}
