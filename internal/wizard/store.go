package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"civic-portal/internal/apperr"
)

// DraftTTL bounds how long an abandoned draft is kept.
const DraftTTL = 24 * time.Hour

type DraftStore interface {
	Get(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	// Claim moves the stored draft from one step to another only if it is
	// still at from. It returns the step the draft is at afterwards and
	// whether this call made the move.
	Claim(ctx context.Context, id string, from, to Step) (Step, bool, error)
}

type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
	now    func() time.Time
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: map[string]Draft{}, now: time.Now}
}

func (s *MemoryDraftStore) Get(_ context.Context, id string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok || s.now().Sub(d.UpdatedAt) >= DraftTTL {
		return nil, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	return &d, nil
}

func (s *MemoryDraftStore) Save(_ context.Context, d *Draft) error {
	s.mu.Lock()
	s.drafts[d.ID] = *d
	s.mu.Unlock()
	return nil
}

func (s *MemoryDraftStore) Claim(_ context.Context, id string, from, to Step) (Step, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok || s.now().Sub(d.UpdatedAt) >= DraftTTL {
		return "", false, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	if d.Step != from {
		return d.Step, false, nil
	}
	d.Step = to
	d.UpdatedAt = s.now().UTC()
	s.drafts[id] = d
	return to, true, nil
}

// Purge removes drafts idle for longer than DraftTTL.
func (s *MemoryDraftStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := s.now()
	for id, d := range s.drafts {
		if now.Sub(d.UpdatedAt) >= DraftTTL {
			delete(s.drafts, id)
			n++
		}
	}
	return n
}

// RedisDraftStore keeps drafts as JSON values that expire after DraftTTL of
// inactivity.
type RedisDraftStore struct {
	rdb *redis.Client
}

func NewRedisDraftStore(rdb *redis.Client) *RedisDraftStore { return &RedisDraftStore{rdb: rdb} }

func draftKey(id string) string { return "draft:" + id }

func encodeDraft(d *Draft) ([]byte, error) { return json.Marshal(d) }

func decodeDraft(raw []byte) (*Draft, error) {
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RedisDraftStore) Get(ctx context.Context, id string) (*Draft, error) {
	raw, err := s.rdb.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Storage("get draft", err)
	}
	d, err := decodeDraft(raw)
	if err != nil {
		return nil, apperr.Storage("decode draft", err)
	}
	return d, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, d *Draft) error {
	raw, err := encodeDraft(d)
	if err != nil {
		return err
	}
	return apperr.Storage("save draft", s.rdb.Set(ctx, draftKey(d.ID), raw, DraftTTL).Err())
}

// Claim is an optimistic WATCH/MULTI transaction on the draft key. Losing
// the race to another writer reports no step and no claim.
func (s *RedisDraftStore) Claim(ctx context.Context, id string, from, to Step) (Step, bool, error) {
	key := draftKey(id)
	var (
		cur     Step
		claimed bool
	)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		d, err := decodeDraft(raw)
		if err != nil {
			return err
		}
		cur = d.Step
		if d.Step != from {
			return nil
		}
		d.Step = to
		d.UpdatedAt = time.Now().UTC()
		next, err := encodeDraft(d)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, next, DraftTTL)
			return nil
		})
		if err == nil {
			cur, claimed = to, true
		}
		return err
	}, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return "", false, nil
	case errors.Is(err, apperr.ErrNotFound):
		return "", false, err
	case err != nil:
		return "", false, apperr.Storage("claim draft", err)
	}
	return cur, claimed, nil
}
