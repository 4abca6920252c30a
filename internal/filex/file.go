// Package filex holds the on-disk discipline for cached content: a file only
// appears at its canonical path once it has been fully written.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const partialSuffix = ".part"

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Partial is a temp file that becomes visible at its final path only through
// Commit. Abort removes it. Both are safe to call more than once.
type Partial struct {
	*os.File
	final string
	done  bool
}

// NewPartial creates a temp file in the directory of final.
func NewPartial(final string) (*Partial, error) {
	dir := filepath.Dir(final)
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	name := filepath.Join(dir, "."+filepath.Base(final)+"."+uuid.NewString()+partialSuffix)
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	return &Partial{File: f, final: final}, nil
}

// Final returns the canonical path the file will be committed to.
func (p *Partial) Final() string { return p.final }

// Commit flushes the temp file and renames it onto the final path.
func (p *Partial) Commit() error {
	if p.done {
		return errors.New("partial already finished")
	}
	p.done = true
	tmp := p.Name()
	if err := p.Sync(); err != nil {
		p.File.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := p.File.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p.final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", p.final, err)
	}
	return nil
}

// Abort discards the temp file. It is a no-op after Commit.
func (p *Partial) Abort() {
	if p.done {
		return
	}
	p.done = true
	p.File.Close()
	os.Remove(p.Name())
}

// RemoveStale deletes temp files left in dir by an earlier crash and returns
// how many were removed.
func RemoveStale(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), partialSuffix) || !strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			n++
		}
	}
	return n, nil
}
