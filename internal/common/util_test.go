package common

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
)

// ---------- MakeRandHexString ----------

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestMakeRandHexString_TokensDoNotRepeat(t *testing.T) {
	a, err := MakeRandHexString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MakeRandHexString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Fatalf("two origin tokens are identical: %q", a)
	}
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray(t *testing.T) {
	k1 := GenerateRandByteArray(32)
	k2 := GenerateRandByteArray(32)
	if len(k1) != 32 || len(k2) != 32 {
		t.Fatalf("expected 32-byte keys, got %d and %d", len(k1), len(k2))
	}
	if string(k1) == string(k2) {
		t.Fatalf("two relay keys are identical")
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZeroesKey(t *testing.T) {
	key := []byte{1, 2, 3, 4, 5}
	WipeByteArray(key)
	for i, b := range key {
		if b != 0 {
			t.Fatalf("byte %d not wiped: %d", i, b)
		}
	}
}

func TestWipeByteArray_Nil(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("WipeByteArray(nil) panicked: %v", r)
		}
	}()
	WipeByteArray(nil)
}

// ---------- IsCancelled ----------

func TestIsCancelled(t *testing.T) {
	if !errors.Is(ErrCancelled, context.Canceled) {
		t.Fatalf("ErrCancelled must match context.Canceled")
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"context cancel", fmt.Errorf("relay: %w", context.Canceled), true},
		{"user cancel", fmt.Errorf("ticket: %w", ErrCancelled), true},
		{"all channels failed", ErrAllChannelsFailed, false},
		{"stalled transfer", fmt.Errorf("lan: %w", ErrStalled), false},
		{"deadline", context.DeadlineExceeded, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCancelled(tt.err); got != tt.want {
				t.Fatalf("IsCancelled(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
