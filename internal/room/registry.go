// Package room owns per-room game state: the mapping from room identifier
// to the room's secret word, and the policy used to rotate that word.
package room

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

var (
	// ErrRoomNotFound is returned when a room was never ensured.
	ErrRoomNotFound = errors.New("room not found")

	// ErrVocabularyTooSmall is returned when a registry is built with fewer
	// than two words, which would make rotation meaningless.
	ErrVocabularyTooSmall = errors.New("vocabulary must contain at least two words")
)

// DefaultVocabulary is the fixed word list rooms draw from.
var DefaultVocabulary = []string{"apple", "cat", "house", "tree", "car", "book", "phone"}

// Room holds the state of a single room.
type Room struct {
	ID string

	mu          sync.Mutex
	currentWord string
}

// Word returns the room's current secret word.
func (r *Room) Word() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentWord
}

// Registry maps room identifiers to rooms. Rooms are created lazily and
// live for the lifetime of the registry.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	vocabulary []string
	pickMu     sync.Mutex
	pick       func(n int) int
}

// Option configures a Registry.
type Option func(*Registry)

// WithVocabulary replaces the default word list.
func WithVocabulary(words []string) Option {
	return func(r *Registry) {
		r.vocabulary = append([]string(nil), words...)
	}
}

// WithPicker overrides the random index source. pick(n) must return a
// value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(r *Registry) {
		if pick != nil {
			r.pick = pick
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		rooms:      make(map[string]*Room),
		vocabulary: append([]string(nil), DefaultVocabulary...),
		pick:       rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}

	words := make([]string, 0, len(r.vocabulary))
	for _, w := range r.vocabulary {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	if len(words) < 2 {
		return nil, ErrVocabularyTooSmall
	}
	r.vocabulary = words

	return r, nil
}

// Vocabulary returns a copy of the words rooms draw from.
func (r *Registry) Vocabulary() []string {
	return append([]string(nil), r.vocabulary...)
}

// Contains reports whether word is part of the vocabulary.
func (r *Registry) Contains(word string) bool {
	for _, w := range r.vocabulary {
		if w == word {
			return true
		}
	}
	return false
}

// Len returns the number of rooms created so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// EnsureRoom returns the room for roomID, creating it with a freshly
// sampled word if it does not exist yet. An existing room's word is never
// reset.
func (r *Registry) EnsureRoom(roomID string) *Room {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if ok {
		return rm
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created it between the two locks.
	if rm, ok = r.rooms[roomID]; ok {
		return rm
	}

	rm = &Room{ID: roomID, currentWord: r.randomWord()}
	r.rooms[roomID] = rm
	return rm
}

func (r *Registry) lookup(roomID string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
	}
	return rm, nil
}

// CurrentWord returns the secret word of an existing room.
func (r *Registry) CurrentWord(roomID string) (string, error) {
	rm, err := r.lookup(roomID)
	if err != nil {
		return "", err
	}
	return rm.Word(), nil
}

// AdvanceWord assigns a new uniformly sampled word to the room and returns
// it. The new word may equal the previous one.
func (r *Registry) AdvanceWord(roomID string) (string, error) {
	rm, err := r.lookup(roomID)
	if err != nil {
		return "", err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.currentWord = r.randomWord()
	return rm.currentWord, nil
}

// Resolve checks guess against the room's current word after lowercasing
// both. Unicode case folding is not applied, so "houſe" does not match "house". On
// a match the word is advanced and onMatch is called with the new word
// while the room is still locked, so concurrent correct guesses are
// resolved one at a time and only the first one wins a given word.
// The room is created if it does not exist.
func (r *Registry) Resolve(roomID, guess string, onMatch func(next string)) bool {
	rm := r.EnsureRoom(roomID)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if strings.ToLower(guess) != strings.ToLower(rm.currentWord) {
		return false
	}

	rm.currentWord = r.randomWord()
	if onMatch != nil {
		onMatch(rm.currentWord)
	}
	return true
}

func (r *Registry) randomWord() string {
	r.pickMu.Lock()
	i := r.pick(len(r.vocabulary))
	r.pickMu.Unlock()

	if i < 0 || i >= len(r.vocabulary) {
		i = 0
	}
	return r.vocabulary[i]
}
