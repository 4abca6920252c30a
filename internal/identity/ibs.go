package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

var hashToCurveDST = []byte("CORRAL-IBS-V01-CS02-with-BN254G1_XMD:SHA-256_SVDW_RO_")

var ErrBadSignature = errors.New("bad signature")

// SignatureSize is the encoded length of a signature: U and V compressed.
const SignatureSize = 2 * bn254.SizeOfG1AffineCompressed

// Params are the public parameters of a key issuer.
type Params struct {
	Ppub bn254.G2Affine
}

// MasterKey is the issuer secret.
type MasterKey struct {
	s      *big.Int
	Params Params
}

// PrivateKey is the key extracted for one identity string.
type PrivateKey struct {
	ID string
	d  bn254.G1Affine
}

// Setup generates a fresh issuer.
func Setup() (*MasterKey, error) {
	s, err := randomScalar()
	if err != nil {
		return nil, err
	}
	return newMasterKey(s), nil
}

func newMasterKey(s *big.Int) *MasterKey {
	_, _, _, g2 := bn254.Generators()
	var ppub bn254.G2Affine
	ppub.ScalarMultiplication(&g2, s)
	return &MasterKey{s: s, Params: Params{Ppub: ppub}}
}

// ParseMasterKey reads a hex scalar as written by MasterKey.Encode.
func ParseMasterKey(s string) (*MasterKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("parse master key: invalid hex")
	}
	k := new(big.Int).SetBytes(raw)
	k.Mod(k, fr.Modulus())
	if k.Sign() == 0 {
		return nil, fmt.Errorf("parse master key: zero scalar")
	}
	return newMasterKey(k), nil
}

func (m *MasterKey) Encode() string {
	return hex.EncodeToString(m.s.Bytes())
}

// Extract issues the private key for id.
func (m *MasterKey) Extract(id string) (*PrivateKey, error) {
	q, err := hashID(id)
	if err != nil {
		return nil, err
	}
	var d bn254.G1Affine
	d.ScalarMultiplication(&q, m.s)
	return &PrivateKey{ID: id, d: d}, nil
}

// Encode renders the public parameters as hex.
func (p Params) Encode() string {
	b := p.Ppub.Bytes()
	return hex.EncodeToString(b[:])
}

// ParseParams is the inverse of Params.Encode.
func ParseParams(s string) (Params, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Params{}, fmt.Errorf("parse params: %w", err)
	}
	var p Params
	if _, err := p.Ppub.SetBytes(raw); err != nil {
		return Params{}, fmt.Errorf("parse params: %w", err)
	}
	return p, nil
}

// Encode serializes the key for storage by a key manager.
func (k *PrivateKey) Encode() string {
	b := k.d.Bytes()
	return hex.EncodeToString(b[:])
}

// ParsePrivateKey reads a key produced by PrivateKey.Encode.
func ParsePrivateKey(id, s string) (*PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	k := &PrivateKey{ID: id}
	if _, err := k.d.SetBytes(raw); err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return k, nil
}

// Sign signs msg under k.
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	q, err := hashID(k.ID)
	if err != nil {
		return nil, err
	}
	r, err := randomScalar()
	if err != nil {
		return nil, err
	}

	var u bn254.G1Affine
	u.ScalarMultiplication(&q, r)
	h := challenge(msg, &u)

	e := new(big.Int).Add(r, h)
	e.Mod(e, fr.Modulus())
	var v bn254.G1Affine
	v.ScalarMultiplication(&k.d, e)

	ub, vb := u.Bytes(), v.Bytes()
	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, ub[:]...)
	return append(sig, vb[:]...), nil
}

// Verify checks sig on msg for the identity string id.
func (p Params) Verify(id string, msg, sig []byte) error {
	if len(sig) != SignatureSize {
		return fmt.Errorf("%w: length %d", ErrBadSignature, len(sig))
	}
	var u, v bn254.G1Affine
	if _, err := u.SetBytes(sig[:bn254.SizeOfG1AffineCompressed]); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if _, err := v.SetBytes(sig[bn254.SizeOfG1AffineCompressed:]); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if u.IsInfinity() || v.IsInfinity() {
		return ErrBadSignature
	}

	q, err := hashID(id)
	if err != nil {
		return err
	}
	h := challenge(msg, &u)

	// w = -(U + h·Q)
	var hq bn254.G1Affine
	hq.ScalarMultiplication(&q, h)
	var acc bn254.G1Jac
	acc.FromAffine(&u)
	acc.AddMixed(&hq)
	var w bn254.G1Affine
	w.FromJacobian(&acc)
	w.Neg(&w)

	_, _, _, g2 := bn254.Generators()
	ok, err := bn254.PairingCheck([]bn254.G1Affine{v, w}, []bn254.G2Affine{g2, p.Ppub})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}

func hashID(id string) (bn254.G1Affine, error) {
	q, err := bn254.HashToG1([]byte(id), hashToCurveDST)
	if err != nil {
		return bn254.G1Affine{}, fmt.Errorf("hash identity: %w", err)
	}
	return q, nil
}

// challenge is H2(m, U) reduced into the scalar field.
func challenge(msg []byte, u *bn254.G1Affine) *big.Int {
	ub := u.Bytes()
	h := sha3.New256()
	h.Write(msg)
	h.Write(ub[:])
	out := new(big.Int).SetBytes(h.Sum(nil))
	return out.Mod(out, fr.Modulus())
}

func randomScalar() (*big.Int, error) {
	for {
		k, err := rand.Int(rand.Reader, fr.Modulus())
		if err != nil {
			return nil, fmt.Errorf("random scalar: %w", err)
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}
