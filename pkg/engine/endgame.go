package engine

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var ErrEndgameConflict = errors.New("endgame conflict")

// Outcome of a position for the side to move.
type Outcome uint8

const (
	OutcomeUnknown Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	case OutcomeDraw:
		return "draw"
	}
	return "unknown"
}

type endgameRecord struct {
	Key     uint64
	Outcome Outcome
}

// EndgameCache maps position keys to known outcomes. Entries are never
// evicted or changed once recorded.
type EndgameCache struct {
	path    string
	log     zerolog.Logger
	mu      sync.RWMutex
	entries map[uint64]Outcome
}

func NewEndgameCache(path string, log zerolog.Logger) *EndgameCache {
	return &EndgameCache{
		path:    path,
		log:     log.With().Str("component", "endgame").Logger(),
		entries: make(map[uint64]Outcome),
	}
}

func (c *EndgameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *EndgameCache) Lookup(key uint64) (Outcome, bool) {
	c.mu.RLock()
	var outcome, ok = c.entries[key]
	c.mu.RUnlock()
	return outcome, ok
}

func (c *EndgameCache) Record(key uint64, outcome Outcome) error {
	if outcome == OutcomeUnknown {
		return fmt.Errorf("record %x: unknown outcome", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[key]; ok {
		if old != outcome {
			return fmt.Errorf("%w: key %x has %v, got %v", ErrEndgameConflict, key, old, outcome)
		}
		return nil
	}
	c.entries[key] = outcome
	return nil
}

// LoadFromStore replaces the cache content with the store file.
// A missing file leaves the cache empty and is not an error.
func (c *EndgameCache) LoadFromStore() error {
	var entries = make(map[uint64]Outcome)
	defer func() {
		c.mu.Lock()
		c.entries = entries
		c.mu.Unlock()
	}()
	if c.path == "" {
		return nil
	}
	file, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Info().Str("path", c.path).Msg("endgame store not found, starting empty")
			return nil
		}
		return err
	}
	defer file.Close()

	var records []endgameRecord
	if err := gob.NewDecoder(file).Decode(&records); err != nil {
		return fmt.Errorf("decode endgame store %s: %w", c.path, err)
	}
	for _, r := range records {
		entries[r.Key] = r.Outcome
	}
	c.log.Info().Str("path", c.path).Int("entries", len(entries)).Msg("endgame store loaded")
	return nil
}

func (c *EndgameCache) FlushToStore() error {
	if c.path == "" {
		return nil
	}
	c.mu.RLock()
	var records = make([]endgameRecord, 0, len(c.entries))
	for key, outcome := range c.entries {
		records = append(records, endgameRecord{Key: key, Outcome: outcome})
	}
	c.mu.RUnlock()

	var dir = filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	file, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp*")
	if err != nil {
		return err
	}
	var tmpName = file.Name()
	if err := gob.NewEncoder(file).Encode(records); err != nil {
		file.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode endgame store %s: %w", c.path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	c.log.Info().Str("path", c.path).Int("entries", len(records)).Msg("endgame store flushed")
	return nil
}
