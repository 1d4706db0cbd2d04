// Package flash carries the outcome of a form POST across the redirect that
// follows it.
package flash

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Kind classifies a message for rendering.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Message is one line shown above the form.
type Message struct {
	Kind Kind
	Text string
}

// Entry is everything a redirected GET needs to redraw the page.
type Entry struct {
	Messages []Message
	Form     map[string]string
}

// Store keeps entries in memory until they are read once or expire.
type Store struct {
	c *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{c: cache.New(ttl, 2*ttl)}
}

// Put saves e and returns the key to hand to the client.
func (s *Store) Put(e Entry) string {
	key := uuid.New().String()
	s.c.SetDefault(key, e)
	return key
}

// Pop returns the entry for key and forgets it.
func (s *Store) Pop(key string) (Entry, bool) {
	if key == "" {
		return Entry{}, false
	}
	v, ok := s.c.Get(key)
	if !ok {
		return Entry{}, false
	}
	s.c.Delete(key)
	e, ok := v.(Entry)
	return e, ok
}

// Len reports how many entries are waiting.
func (s *Store) Len() int {
	return s.c.ItemCount()
}
