package origin

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/dmitrijs2005/corral/internal/common"
)

// TokenRegistry holds the short-lived access tokens minted for authored
// objects. A token is bound to one {app id, object id} pair.
type TokenRegistry struct {
	cache    *bigcache.BigCache
	validity time.Duration
	now      func() time.Time
}

func NewTokenRegistry(ctx context.Context, validity time.Duration) (*TokenRegistry, error) {
	cfg := bigcache.DefaultConfig(validity)
	cfg.Shards = 64
	cfg.CleanWindow = time.Minute
	cfg.Verbose = false
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("token cache: %w", err)
	}
	return &TokenRegistry{cache: cache, validity: validity, now: time.Now}, nil
}

// Mint returns a fresh token for objectID of appID.
func (r *TokenRegistry) Mint(appID, objectID string) (string, error) {
	token, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	v := make([]byte, 8, 8+len(appID)+1+len(objectID))
	binary.BigEndian.PutUint64(v, uint64(r.now().Add(r.validity).UnixNano()))
	v = append(v, appID+"\x00"+objectID...)
	if err := r.cache.Set(token, v); err != nil {
		return "", err
	}
	return token, nil
}

// Check reports whether token was minted for exactly appID and objectID and
// has not expired.
func (r *TokenRegistry) Check(token, appID, objectID string) bool {
	if token == "" {
		return false
	}
	v, err := r.cache.Get(token)
	if err != nil || len(v) < 8 {
		return false
	}
	if r.now().UnixNano() > int64(binary.BigEndian.Uint64(v[:8])) {
		return false
	}
	app, obj, ok := strings.Cut(string(v[8:]), "\x00")
	return ok && app == appID && obj == objectID
}

// Revoke forgets token.
func (r *TokenRegistry) Revoke(token string) error {
	if err := r.cache.Delete(token); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (r *TokenRegistry) Close() error {
	return r.cache.Close()
}
