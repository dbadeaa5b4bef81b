// Package store holds the client's in-memory state tree. State changes
// only through the named transitions below; every transition is a pure,
// synchronous update under one lock, and none performs I/O. Coordinators
// do the I/O, then dispatch the result here.
package store

import (
	"sync"

	"ripple/internal/models"
)

// Store is the single state tree for posts, comments, chat, and session.
type Store struct {
	mu sync.RWMutex

	posts     []models.Post
	postIndex map[uint]int
	hasMore   bool
	cursor    string
	page      int

	// feedGen is the request generation for feed fetches. A response
	// carrying an older generation than current is stale and discarded.
	feedGen uint64

	// toggleSeq assigns a monotonic version per post to like toggles so a
	// failing earlier toggle cannot revert a later one.
	toggleSeq map[uint]uint64

	comments   map[uint][]models.Comment
	commentIDs map[uint]map[string]struct{}

	chats   map[uint][]models.ChatMessage
	chatIDs map[uint]map[string]struct{}

	session models.Session
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		postIndex:  make(map[uint]int),
		toggleSeq:  make(map[uint]uint64),
		comments:   make(map[uint][]models.Comment),
		commentIDs: make(map[uint]map[string]struct{}),
		chats:      make(map[uint][]models.ChatMessage),
		chatIDs:    make(map[uint]map[string]struct{}),
	}
}

// Login replaces the session slice.
func (s *Store) Login(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.Session{Token: token, User: user, IsAuthenticated: true}
}

// Logout resets the session slice to its unauthenticated zero value.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.Session{}
}

// Session returns a copy of the session slice.
func (s *Store) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) rebuildIndex() {
	s.postIndex = make(map[uint]int, len(s.posts))
	for i := range s.posts {
		s.postIndex[s.posts[i].ID] = i
	}
}
