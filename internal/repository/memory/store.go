package memory

import (
	"log/slog"
	"sync"
	"time"

	"telebot/internal/domain/models"
)

// Config configures an in-memory store
type Config struct {
	// MessageRetention caps messages kept per project; 0 keeps everything
	MessageRetention int
	Logger           *slog.Logger
	// Now overrides the clock (tests)
	Now func() time.Time
}

// Store holds projects and chat messages for the lifetime of the process.
// It implements repositories.ProjectRepository and repositories.MessageRepository.
// Concurrent updates to the same project are last-write-wins.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
	messages map[string]*storedMessage
	seq      uint64
	last     time.Time

	retention int
	now       func() time.Time
	logger    *slog.Logger
}

// storedMessage keeps the insertion sequence used to break createdAt ties
type storedMessage struct {
	msg models.ChatMessage
	seq uint64
}

// NewStore creates an empty store. Call Init to seed the default project.
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = &Config{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		projects:  make(map[string]*models.Project),
		messages:  make(map[string]*storedMessage),
		retention: cfg.MessageRetention,
		now:       now,
		logger:    logger,
	}
}

// tick returns the current time, never earlier than the last value handed out.
// Must be called with mu held for writing.
func (s *Store) tick() time.Time {
	t := s.now()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

// nextSeq must be called with mu held for writing
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}
