// Package memory is an in-process content store implementing the repository interfaces.
// It backs the "memory" database driver and the service tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

// Store keeps every record in maps keyed by id. Records are copied on the way in and out,
// so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	users    map[uuid.UUID]model.User
	posts    map[uuid.UUID]model.Post
	comments map[uuid.UUID]model.Comment
	settings *model.Settings

	// seq breaks CreatedAt ties so newest-first ordering is stable.
	seq   map[uuid.UUID]uint64
	next  uint64
	clock func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]model.User),
		posts:    make(map[uuid.UUID]model.Post),
		comments: make(map[uuid.UUID]model.Comment),
		seq:      make(map[uuid.UUID]uint64),
		clock:    time.Now,
	}
}

// SetClock overrides the time source used for CreatedAt and UpdatedAt.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Users returns a UserRepository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Posts returns a PostRepository view of the store.
func (s *Store) Posts() repository.PostRepository { return &postRepo{s: s} }

// Comments returns a CommentRepository view of the store.
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s: s} }

// Settings returns a SettingsRepository view of the store.
func (s *Store) Settings() repository.SettingsRepository { return &settingsRepo{s: s} }

// stamp assigns an id, timestamps and a sequence number to a new record. Caller holds mu.
func (s *Store) stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := s.clock()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = now
	}
	s.next++
	s.seq[*id] = s.next
}

// newestFirst sorts by creation time descending, later inserts first on ties. Caller holds mu.
func newestFirst[T any](s *Store, items []T, key func(T) (uuid.UUID, time.Time)) {
	sort.SliceStable(items, func(i, j int) bool {
		idI, tI := key(items[i])
		idJ, tJ := key(items[j])
		if !tI.Equal(tJ) {
			return tI.After(tJ)
		}
		return s.seq[idI] > s.seq[idJ]
	})
}

// oldestFirst is the reverse of newestFirst. Caller holds mu.
func oldestFirst[T any](s *Store, items []T, key func(T) (uuid.UUID, time.Time)) {
	sort.SliceStable(items, func(i, j int) bool {
		idI, tI := key(items[i])
		idJ, tJ := key(items[j])
		if !tI.Equal(tJ) {
			return tI.Before(tJ)
		}
		return s.seq[idI] < s.seq[idJ]
	})
}

func limitSlice[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func cloneIDs(ids datatypes.JSONSlice[uuid.UUID]) datatypes.JSONSlice[uuid.UUID] {
	if ids == nil {
		return nil
	}
	out := make(datatypes.JSONSlice[uuid.UUID], len(ids))
	copy(out, ids)
	return out
}

func clonePost(p model.Post) model.Post {
	p.Likes = cloneIDs(p.Likes)
	p.Comments = cloneIDs(p.Comments)
	return p
}

func cloneComment(c model.Comment) model.Comment {
	c.Likes = cloneIDs(c.Likes)
	c.Replies = cloneIDs(c.Replies)
	if c.ParentID != nil {
		parent := *c.ParentID
		c.ParentID = &parent
	}
	return c
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
