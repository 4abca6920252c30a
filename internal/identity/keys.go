package identity

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/corral/internal/common"
)

// KeyManager looks up the signing key of an identity for an epoch.
type KeyManager interface {
	SigningKey(ctx context.Context, d Descriptor, epoch uint64) (*PrivateKey, error)
}

// FileKeyManager reads keys issued ahead of time, one file per epoch:
// <dir>/<type>_<hashhex>_<epoch>.key containing the hex-encoded key.
type FileKeyManager struct {
	Dir string
}

func NewFileKeyManager(dir string) *FileKeyManager {
	return &FileKeyManager{Dir: dir}
}

func (m *FileKeyManager) path(d Descriptor, epoch uint64) string {
	name := d.Type + "_" + hex.EncodeToString(d.Hash) + "_" + strconv.FormatUint(epoch, 10) + ".key"
	return filepath.Join(m.Dir, name)
}

func (m *FileKeyManager) SigningKey(_ context.Context, d Descriptor, epoch uint64) (*PrivateKey, error) {
	b, err := os.ReadFile(m.path(d, epoch))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("signing key %s: %w", d.Full(epoch), common.ErrorNotFound)
		}
		return nil, fmt.Errorf("signing key %s: %w", d.Full(epoch), err)
	}
	return ParsePrivateKey(d.Full(epoch), strings.TrimSpace(string(b)))
}

// Store writes k where SigningKey will find it.
func (m *FileKeyManager) Store(d Descriptor, epoch uint64, k *PrivateKey) error {
	if err := os.MkdirAll(m.Dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(m.path(d, epoch), []byte(k.Encode()+"\n"), 0o600)
}

// IssuingKeyManager extracts keys in process from a master key. It stands in
// for the external key issuer in development setups and tests.
type IssuingKeyManager struct {
	master *MasterKey

	mu    sync.Mutex
	cache map[string]*PrivateKey
}

func NewIssuingKeyManager(master *MasterKey) *IssuingKeyManager {
	return &IssuingKeyManager{master: master, cache: make(map[string]*PrivateKey)}
}

func (m *IssuingKeyManager) SigningKey(_ context.Context, d Descriptor, epoch uint64) (*PrivateKey, error) {
	id := d.Full(epoch)
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.cache[id]; ok {
		return k, nil
	}
	k, err := m.master.Extract(id)
	if err != nil {
		return nil, err
	}
	m.cache[id] = k
	return k, nil
}

// Signer answers ticket challenges on behalf of one identity.
type Signer struct {
	ID   Descriptor
	Keys KeyManager
	Now  func() time.Time
}

func NewSigner(id Descriptor, keys KeyManager) *Signer {
	return &Signer{ID: id, Keys: keys, Now: time.Now}
}

// SignNonce signs nonce with the current epoch's key and returns the full
// descriptor that names the key together with the hex signature.
func (s *Signer) SignNonce(ctx context.Context, nonce []byte) (string, string, error) {
	epoch := s.ID.Epoch(s.Now())
	k, err := s.Keys.SigningKey(ctx, s.ID, epoch)
	if err != nil {
		return "", "", err
	}
	sig, err := k.Sign(nonce)
	if err != nil {
		return "", "", err
	}
	return s.ID.Full(epoch), hex.EncodeToString(sig), nil
}
