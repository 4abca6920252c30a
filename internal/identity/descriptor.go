package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EpochLength is how long a signing key stays valid.
const EpochLength = 7 * 24 * time.Hour

// Identity types understood by the authority.
const (
	TypeEmail = "email"
	TypePhone = "phone"
)

var ErrBadDescriptor = errors.New("bad identity descriptor")

// Identity is a principal in the clear. It only lives on the device that owns
// it; everything on the wire uses its Descriptor.
type Identity struct {
	Type      string `json:"type" yaml:"type"`
	Principal string `json:"principal" yaml:"principal"`
}

// PrincipalHash normalizes principal and hashes it.
func PrincipalHash(principal string) []byte {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(principal))))
	return h[:]
}

func (i Identity) Descriptor() Descriptor {
	return Descriptor{Type: i.Type, Hash: PrincipalHash(i.Principal)}
}

// Descriptor names an identity without disclosing the principal.
type Descriptor struct {
	Type string
	Hash []byte
}

// Short renders "type:hashhex"; ACLs and ticket URLs use this form.
func (d Descriptor) Short() string {
	return d.Type + ":" + hex.EncodeToString(d.Hash)
}

// Full renders "type:hashhex:epoch"; it is the string signing keys are
// extracted for.
func (d Descriptor) Full(epoch uint64) string {
	return d.Short() + ":" + strconv.FormatUint(epoch, 10)
}

func (d Descriptor) String() string { return d.Short() }

func (d Descriptor) Equal(o Descriptor) bool {
	return d.Short() == o.Short()
}

// Epoch returns the key epoch of d at t.
func (d Descriptor) Epoch(t time.Time) uint64 {
	return EpochAt(d.Hash, t)
}

// EpochAt computes (unix + phase(hash)) / EpochLength, where the phase is the
// first eight bytes of hash taken modulo the epoch length in seconds.
func EpochAt(hash []byte, t time.Time) uint64 {
	length := uint64(EpochLength / time.Second)
	var phase uint64
	if len(hash) >= 8 {
		phase = binary.BigEndian.Uint64(hash[:8]) % length
	}
	return (uint64(t.Unix()) + phase) / length
}

// ParseDescriptor accepts the short form. The type tag must be non-empty and
// the hash must be a hex SHA-256 digest.
func ParseDescriptor(s string) (Descriptor, error) {
	typ, h, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || typ == "" || strings.Contains(h, ":") {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrBadDescriptor, s)
	}
	return parseParts(typ, h, s)
}

// ParseFullDescriptor accepts "type:hashhex:epoch".
func ParseFullDescriptor(s string) (Descriptor, uint64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 || parts[0] == "" {
		return Descriptor{}, 0, fmt.Errorf("%w: %q", ErrBadDescriptor, s)
	}
	d, err := parseParts(parts[0], parts[1], s)
	if err != nil {
		return Descriptor{}, 0, err
	}
	epoch, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return Descriptor{}, 0, fmt.Errorf("%w: epoch %q", ErrBadDescriptor, parts[2])
	}
	return d, epoch, nil
}

func parseParts(typ, h, orig string) (Descriptor, error) {
	raw, err := hex.DecodeString(h)
	if err != nil || len(raw) != sha256.Size {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrBadDescriptor, orig)
	}
	return Descriptor{Type: typ, Hash: raw}, nil
}

// ParseDescriptorList splits a comma-separated list of short descriptors,
// skipping empty items.
func ParseDescriptorList(s string) ([]Descriptor, error) {
	var out []Descriptor
	for _, item := range strings.Split(s, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		d, err := ParseDescriptor(item)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// JoinDescriptors is the inverse of ParseDescriptorList.
func JoinDescriptors(ds []Descriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Short()
	}
	return strings.Join(parts, ",")
}
