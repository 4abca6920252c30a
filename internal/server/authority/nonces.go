package authority

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/dmitrijs2005/corral/internal/common"
)

const nonceSize = 16

// NonceStore keeps the outstanding challenges. A nonce is bound to the
// identity, operation and object it was issued for and can be answered once.
type NonceStore struct {
	mu       sync.Mutex
	cache    *bigcache.BigCache
	validity time.Duration
	now      func() time.Time
}

func NewNonceStore(ctx context.Context, validity time.Duration) (*NonceStore, error) {
	cfg := bigcache.DefaultConfig(validity)
	cfg.Shards = 64
	cfg.CleanWindow = time.Minute
	cfg.Verbose = false
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("nonce cache: %w", err)
	}
	return &NonceStore{cache: cache, validity: validity, now: time.Now}, nil
}

func nonceScope(user, op, key string) string {
	return user + "\x00" + op + "\x00" + key
}

// Issue replaces any outstanding nonce of scope with a fresh one.
func (s *NonceStore) Issue(scope string) (string, error) {
	nonce, err := common.MakeRandHexString(nonceSize)
	if err != nil {
		return "", err
	}
	v := make([]byte, 8, 8+len(nonce))
	binary.BigEndian.PutUint64(v, uint64(s.now().Add(s.validity).UnixNano()))
	v = append(v, nonce...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Set(scope, v); err != nil {
		return "", err
	}
	return nonce, nil
}

// Take removes and returns the nonce of scope. Expired or missing nonces
// report false.
func (s *NonceStore) Take(scope string) (string, bool) {
	s.mu.Lock()
	v, err := s.cache.Get(scope)
	if err == nil {
		s.cache.Delete(scope)
	}
	s.mu.Unlock()

	if err != nil || len(v) <= 8 {
		return "", false
	}
	if s.now().UnixNano() > int64(binary.BigEndian.Uint64(v[:8])) {
		return "", false
	}
	return string(v[8:]), true
}

func (s *NonceStore) Close() error {
	return s.cache.Close()
}
