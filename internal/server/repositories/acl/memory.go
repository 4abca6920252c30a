package acl

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/server/models"
)

// InMemoryRepository keeps ACLs for the lifetime of the process. It is used
// when no database is configured.
type InMemoryRepository struct {
	mu   sync.RWMutex
	acls map[string]*models.ACL
	now  func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{acls: make(map[string]*models.ACL), now: time.Now}
}

func (r *InMemoryRepository) ClaimOwner(_ context.Context, key, owner string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.acls[key]; ok {
		return a.Owner, nil
	}
	r.acls[key] = &models.ACL{ObjectKey: key, Owner: owner, CreatedAt: r.now()}
	return owner, nil
}

func (r *InMemoryRepository) Get(_ context.Context, key string) (*models.ACL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.acls[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	cp.Members = slices.Clone(a.Members)
	return &cp, nil
}

func (r *InMemoryRepository) ReplaceMembers(_ context.Context, key string, members []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.acls[key]
	if !ok {
		return common.ErrorNotFound
	}
	m := slices.Clone(members)
	slices.Sort(m)
	a.Members = slices.Compact(m)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
