package assistant

import (
	"sync"
	"time"
)

// Message is one turn of a conversation transcript.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Sources []string  `json:"sources,omitempty"`
	At      time.Time `json:"at"`
}

// Transcript is a keyed conversation history. The version increments on
// every write so clients can detect missed updates.
type Transcript struct {
	Key      string    `json:"key"`
	Version  int       `json:"version"`
	Messages []Message `json:"messages"`
}

// TranscriptStore keeps transcripts in memory per conversation key.
// Safe for concurrent use.
type TranscriptStore struct {
	mu          sync.Mutex
	transcripts map[string]*Transcript
}

func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{transcripts: make(map[string]*Transcript)}
}

// Append adds messages to the transcript for key, creating it when
// absent, and returns the new version.
func (s *TranscriptStore) Append(key string, msgs ...Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[key]
	if !ok {
		t = &Transcript{Key: key}
		s.transcripts[key] = t
	}
	t.Messages = append(t.Messages, msgs...)
	t.Version++
	return t.Version
}

// Get returns a copy of the transcript for key, or nil when absent.
func (s *TranscriptStore) Get(key string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[key]
	if !ok {
		return nil
	}
	cp := *t
	cp.Messages = append([]Message(nil), t.Messages...)
	return &cp
}

// Replace swaps the full message history for key, creating the transcript
// when absent, and returns the new version.
func (s *TranscriptStore) Replace(key string, msgs []Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[key]
	if !ok {
		t = &Transcript{Key: key}
		s.transcripts[key] = t
	}
	t.Messages = append([]Message(nil), msgs...)
	t.Version++
	return t.Version
}

// Clear removes the transcript for key. Returns false when it did not exist.
func (s *TranscriptStore) Clear(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.transcripts[key]
	delete(s.transcripts, key)
	return ok
}

// Reset removes every transcript.
func (s *TranscriptStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = make(map[string]*Transcript)
}

// Keys returns the keys of all stored transcripts.
func (s *TranscriptStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.transcripts))
	for k := range s.transcripts {
		keys = append(keys, k)
	}
	return keys
}
