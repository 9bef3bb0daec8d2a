// Package history keeps the most recent recognition sessions in durable storage.
//
// The full list is serialized as one JSON array under a fixed key. Every
// mutation is a read-modify-write of that list under the store's lock, so
// appends and clears never interleave.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// MaxHistory is the number of entries kept, newest first.
	MaxHistory = 10

	// StorageKey is where the serialized list lives in the KV.
	StorageKey = "hanzicam.history"
)

// Store is a bounded, most-recent-first list of HistoryEntry values.
type Store struct {
	kv    KV
	clock clockwork.Clock
	log   *slog.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for entry timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger used to report corrupt state.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store backed by kv.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		clock: clockwork.NewRealClock(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records a non-empty result as the newest entry and returns it.
// Empty results are never recorded and yield hanzi.ErrEmptyResult.
func (s *Store) Append(result hanzi.RecognitionResult) (hanzi.HistoryEntry, error) {
	if result.Empty() {
		return hanzi.HistoryEntry{}, hanzi.ErrEmptyResult
	}

	id, err := uuid.NewV7()
	if err != nil {
		return hanzi.HistoryEntry{}, fmt.Errorf("generating entry id: %w", err)
	}

	preview, pinyinPreview := hanzi.Previews(result.Characters)
	entry := hanzi.HistoryEntry{
		ID:            id.String(),
		Preview:       preview,
		PinyinPreview: pinyinPreview,
		Results:       slices.Clone(result.Characters),
		Translation:   result.Translation,
		Timestamp:     s.clock.Now().UTC().Truncate(time.Millisecond),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return hanzi.HistoryEntry{}, err
	}

	entries = append([]hanzi.HistoryEntry{entry}, entries...)
	if len(entries) > MaxHistory {
		entries = entries[:MaxHistory]
	}

	if err := s.save(entries); err != nil {
		return hanzi.HistoryEntry{}, err
	}
	return entry, nil
}

// LoadAll returns every entry, newest first. Missing or unparseable state
// reads as an empty list; only failures of the KV itself are returned.
func (s *Store) LoadAll() ([]hanzi.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []hanzi.HistoryEntry{}
	}
	return entries, nil
}

// Get looks up an entry by id.
func (s *Store) Get(id string) (hanzi.HistoryEntry, bool, error) {
	entries, err := s.LoadAll()
	if err != nil {
		return hanzi.HistoryEntry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return hanzi.HistoryEntry{}, false, nil
}

// Clear removes every entry at once.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(StorageKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// load must be called with s.mu held.
func (s *Store) load() ([]hanzi.HistoryEntry, error) {
	raw, found, err := s.kv.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if !found {
		return nil, nil
	}

	entries, err := decode(raw)
	if err != nil {
		s.log.Warn("discarding unreadable history", slog.String("key", StorageKey), slog.Any("error", err))
		return nil, nil
	}
	if len(entries) > MaxHistory {
		entries = entries[:MaxHistory]
	}
	return entries, nil
}

// save must be called with s.mu held.
func (s *Store) save(entries []hanzi.HistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// storedEntry mirrors hanzi.HistoryEntry but accepts numeric ids, which older
// clients wrote as millisecond timestamps.
type storedEntry struct {
	ID            json.RawMessage             `json:"id"`
	Preview       string                      `json:"preview"`
	PinyinPreview string                      `json:"pinyinPreview"`
	Results       []hanzi.RecognizedCharacter `json:"results"`
	Translation   *string                     `json:"translation,omitempty"`
	Timestamp     time.Time                   `json:"timestamp"`
}

func decode(raw string) ([]hanzi.HistoryEntry, error) {
	var stored []storedEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", hanzi.ErrStorageCorrupt, err)
	}

	entries := make([]hanzi.HistoryEntry, 0, len(stored))
	for i, se := range stored {
		id, err := decodeID(se.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", hanzi.ErrStorageCorrupt, i, err)
		}
		entries = append(entries, hanzi.HistoryEntry{
			ID:            id,
			Preview:       se.Preview,
			PinyinPreview: se.PinyinPreview,
			Results:       se.Results,
			Translation:   se.Translation,
			Timestamp:     se.Timestamp,
		})
	}
	return entries, nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("missing id")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
