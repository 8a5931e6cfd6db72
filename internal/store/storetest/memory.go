// Package storetest provides in-memory store implementations for tests. They
// follow the Postgres semantics: ownership scoping, ErrNotFound for malformed
// ids, case-insensitive unique emails. Every mutating call is counted.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/store"
)

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type Journals struct {
	mu      sync.Mutex
	entries map[string]models.Journal
	writes  atomic.Int64
}

func NewJournals() *Journals {
	return &Journals{entries: make(map[string]models.Journal)}
}

// Writes is the number of Create/Update/Delete calls made, successful or not.
func (s *Journals) Writes() int64 { return s.writes.Load() }

// Len is the number of stored entries across all users.
func (s *Journals) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Put stores j as-is, bypassing the write counter.
func (s *Journals) Put(j models.Journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[j.ID] = j
}

func (s *Journals) Create(_ context.Context, j *models.Journal) error {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.CreatedAt, j.UpdatedAt = now, now
	s.entries[j.ID] = *j
	return nil
}

func (s *Journals) ListByUser(_ context.Context, userID string) ([]models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Journal{}
	for _, j := range s.entries {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (s *Journals) owned(id, userID string) (models.Journal, bool) {
	if !validID(id) {
		return models.Journal{}, false
	}
	j, ok := s.entries[id]
	if !ok || j.UserID != userID {
		return models.Journal{}, false
	}
	return j, true
}

func (s *Journals) GetForUser(_ context.Context, id, userID string) (*models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.owned(id, userID)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &j, nil
}

func (s *Journals) UpdateForUser(_ context.Context, id, userID string, in models.JournalInput) (*models.Journal, error) {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.owned(id, userID)
	if !ok {
		return nil, store.ErrNotFound
	}
	j.Title, j.Content = in.Title, in.Content
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&j.Category, in.Category)
	set(&j.Sentiment, in.Sentiment)
	set(&j.Summary, in.Summary)
	set(&j.Suggestions, in.Suggestions)
	j.UpdatedAt = time.Now().UTC()
	s.entries[id] = j
	return &j, nil
}

func (s *Journals) UpdateEnrichment(_ context.Context, id, userID string, e models.Enrichment) (*models.Journal, error) {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.owned(id, userID)
	if !ok {
		return nil, store.ErrNotFound
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&j.Category, e.Category)
	set(&j.Sentiment, e.Sentiment)
	set(&j.Summary, e.Summary)
	set(&j.Suggestions, e.Suggestions)
	j.UpdatedAt = time.Now().UTC()
	s.entries[id] = j
	return &j, nil
}

func (s *Journals) DeleteForUser(_ context.Context, id, userID string) error {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owned(id, userID); !ok {
		return store.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

type Users struct {
	mu       sync.Mutex
	users    map[string]models.User
	accounts map[string]string // provider/accountID -> user id
	writes   atomic.Int64
}

func NewUsers() *Users {
	return &Users{users: make(map[string]models.User), accounts: make(map[string]string)}
}

func (s *Users) Writes() int64 { return s.writes.Load() }

func (s *Users) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Users) byEmail(email string) (models.User, bool) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail(u.Email); taken {
		return store.ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail(email)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Users) update(id string, fn func(u *models.User) error) (*models.User, error) {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *Users) UpdateName(_ context.Context, id, name string) (*models.User, error) {
	return s.update(id, func(u *models.User) error {
		u.Name = name
		return nil
	})
}

func (s *Users) UpdateEmail(_ context.Context, id, email string) (*models.User, error) {
	return s.update(id, func(u *models.User) error {
		if other, taken := s.byEmail(email); taken && other.ID != id {
			return store.ErrEmailTaken
		}
		u.Email = email
		return nil
	})
}

func (s *Users) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := s.update(id, func(u *models.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (s *Users) FindOrCreateOAuthUser(_ context.Context, p models.OAuthProfile) (*models.User, error) {
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.Provider + "/" + p.ProviderAccountID
	if id, ok := s.accounts[key]; ok {
		u := s.users[id]
		return &u, nil
	}

	u, exists := s.byEmail(p.Email)
	if exists && !p.EmailVerified {
		return nil, store.ErrEmailTaken
	}
	if !exists {
		now := time.Now().UTC()
		u = models.User{ID: uuid.NewString(), Name: p.Name, Email: p.Email, Image: p.Image, CreatedAt: now, UpdatedAt: now}
		if p.EmailVerified {
			u.EmailVerified = &now
		}
		s.users[u.ID] = u
	}
	s.accounts[key] = u.ID
	return &u, nil
}

var (
	_ store.JournalStore = (*Journals)(nil)
	_ store.UserStore    = (*Users)(nil)
)
