package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. A single mutex makes every Consume call
// a check-and-set.
type MemoryStore struct {
	mu    sync.Mutex
	codes []*OneTimeCode
	links map[string]*MagicLinkToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{links: make(map[string]*MagicLinkToken)}
}

func (s *MemoryStore) InsertCode(_ context.Context, c *OneTimeCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.codes = append(s.codes, &cp)
	return nil
}

func (s *MemoryStore) ConsumeCode(_ context.Context, email, codeHash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newest *OneTimeCode
	for _, c := range s.codes {
		if c.Email != email || c.CodeHash != codeHash || c.ConsumedAt != nil {
			continue
		}
		if newest == nil || !c.CreatedAt.Before(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil || !newest.ExpiresAt.After(now) {
		return false, nil
	}
	consumed := now
	newest.ConsumedAt = &consumed
	return true, nil
}

func (s *MemoryStore) InsertMagicLink(_ context.Context, l *MagicLinkToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.links[l.TokenHash] = &cp
	return nil
}

func (s *MemoryStore) ConsumeMagicLink(_ context.Context, tokenHash string, now time.Time) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[tokenHash]
	if !ok || l.ConsumedAt != nil || !l.ExpiresAt.After(now) {
		return "", false, nil
	}
	consumed := now
	l.ConsumedAt = &consumed
	return l.Email, true, nil
}

func (s *MemoryStore) Purge(_ context.Context, now, cutoff time.Time) (PurgeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res PurgeResult
	kept := s.codes[:0]
	for _, c := range s.codes {
		if c.ExpiresAt.Before(now) || c.CreatedAt.Before(cutoff) {
			res.CodesDeleted++
			continue
		}
		kept = append(kept, c)
	}
	s.codes = kept

	for hash, l := range s.links {
		if l.ExpiresAt.Before(now) || l.CreatedAt.Before(cutoff) {
			delete(s.links, hash)
			res.MagicLinksDeleted++
		}
	}
	return res, nil
}
