// Package history keeps bounded in-memory conversation transcripts for the
// assistant. Each conversation holds at most maxMessages entries; older
// turns are evicted front-first. Nothing is persisted across restarts.
package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lifescan/aila/internal/domain/model"
)

// defaultMaxMessages bounds a single conversation's transcript.
const defaultMaxMessages = 20

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithMaxMessages sets the per-conversation transcript bound.
func WithMaxMessages(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxMessages = n
		}
	}
}

// Store is a thread-safe in-memory conversation store.
type Store struct {
	mu            sync.RWMutex
	conversations map[string][]model.Message
	maxMessages   int
}

// NewStore creates a conversation store with configuration options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		conversations: make(map[string][]model.Message),
		maxMessages:   defaultMaxMessages,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// New registers a fresh conversation and returns its id. The id embeds the
// caller's user id for traceability.
func (s *Store) New(userID string) string {
	if userID == "" {
		userID = "default"
	}
	id := fmt.Sprintf("%s_%s_%s", userID, time.Now().UTC().Format("20060102"), uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = nil
	return id
}

// Append records a user/assistant exchange, evicting the oldest turns when
// the transcript exceeds the bound.
func (s *Store) Append(conversationID string, messages ...model.Message) {
	if conversationID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	transcript := append(s.conversations[conversationID], messages...)
	if len(transcript) > s.maxMessages {
		transcript = transcript[len(transcript)-s.maxMessages:]
	}
	s.conversations[conversationID] = transcript
}

// Recent returns up to n of the latest messages for a conversation, oldest
// first. Unknown conversations yield an empty slice.
func (s *Store) Recent(conversationID string, n int) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript := s.conversations[conversationID]
	if n > 0 && len(transcript) > n {
		transcript = transcript[len(transcript)-n:]
	}

	// Copy so callers cannot mutate the stored transcript.
	out := make([]model.Message, len(transcript))
	copy(out, transcript)
	return out
}

// Len returns the number of stored messages for a conversation.
func (s *Store) Len(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations[conversationID])
}

// Conversations returns the number of known conversations.
func (s *Store) Conversations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// TotalMessages returns the number of stored messages across conversations.
func (s *Store) TotalMessages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, transcript := range s.conversations {
		total += len(transcript)
	}
	return total
}
