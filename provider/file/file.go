// Package file persists blobs as one file per key under a directory, so
// compiled results survive process restarts.
//
// Each file holds an 8-byte big-endian expiry (unix nanoseconds, 0 = none)
// followed by the value. Files are replaced atomically; a reader sees either
// the old value or the new one.
package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	pr "github.com/unkn0wn-root/gpucache/provider"
)

const headerSize = 8

type Provider struct {
	dir string
	now func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

// New creates dir if needed.
func New(dir string) (*Provider, error) {
	if dir == "" {
		return nil, errors.New("file provider: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file provider: %w", err)
	}
	return &Provider{dir: dir, now: time.Now}, nil
}

func (p *Provider) Dir() string { return p.dir }

// path maps key to <dir>/<h[:2]>/<h>, h = hex sha256(key). Keys may contain
// characters that are not valid in file names.
func (p *Provider) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(p.dir, h[:2], h)
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := p.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(raw) < headerSize {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if exp := int64(binary.BigEndian.Uint64(raw)); exp != 0 && p.now().UnixNano() > exp {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[headerSize:], true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	path := p.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	buf := make([]byte, headerSize+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf, uint64(p.now().Add(ttl).UnixNano()))
	}
	copy(buf[headerSize:], value)
	if err := atomic.WriteFile(path, bytes.NewReader(buf)); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := os.Remove(p.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (p *Provider) Close(context.Context) error { return nil }

// Usage summarizes the entries on disk.
type Usage struct {
	Entries int
	Bytes   int64
	Expired int
}

// Usage walks the directory. Expired entries are counted, not removed.
func (p *Provider) Usage() (Usage, error) {
	var u Usage
	now := p.now().UnixNano()
	err := filepath.WalkDir(p.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		u.Entries++
		u.Bytes += int64(len(raw))
		if len(raw) >= headerSize {
			if exp := int64(binary.BigEndian.Uint64(raw)); exp != 0 && now > exp {
				u.Expired++
			}
		}
		return nil
	})
	return u, err
}
