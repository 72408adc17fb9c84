// Copyright (c) 2025 @AmarnathCJD

package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/amarnathcjd/moocauth/internal/sm4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	defaultSecret = "moocauth-session"
	hkdfInfo      = "moocauth-credential-cache"
)

type fileStore struct {
	mu         sync.Mutex
	path       string
	lastEdited time.Time
	cached     *Credential
	cipher     *sm4.Schedule
}

var _ Store = (*fileStore)(nil)

// NewFromFile returns a store keeping one credential in path, encrypted
// with an SM4 key derived from secret. An empty secret uses a built-in one,
// which only obscures the file.
func NewFromFile(path, secret string) (Store, error) {
	if secret == "" {
		secret = defaultSecret
	}
	key, err := DeriveKey(secret, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	c, err := sm4.NewSchedule(key)
	if err != nil {
		return nil, err
	}
	return &fileStore{path: path, cipher: c}, nil
}

// DeriveKey stretches secret into an SM4 key with HKDF-SHA256, salted with
// the cache file name.
func DeriveKey(secret, salt string) ([]byte, error) {
	key := make([]byte, sm4.KeySize)
	r := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "deriving cache key")
	}
	return key, nil
}

func (l *fileStore) Path() string {
	return l.path
}

func (l *fileStore) Load() (*Credential, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return nil, errors.Wrap(ErrSessionNotFound, l.path)
	default:
		return nil, err
	}

	if info.ModTime().Equal(l.lastEdited) && l.cached != nil {
		return l.cached, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	raw, err := hex.DecodeString(string(data))
	if err != nil {
		return nil, errors.Wrap(ErrCorrupted, err.Error())
	}
	plain, err := l.cipher.Open(raw)
	if err != nil {
		return nil, errors.Wrap(ErrCorrupted, err.Error())
	}

	c := new(Credential)
	if err := json.Unmarshal(plain, c); err != nil {
		return nil, errors.Wrap(ErrCorrupted, err.Error())
	}

	l.cached = c
	l.lastEdited = info.ModTime()
	return c, nil
}

func (l *fileStore) Store(c *Credential) error {
	if c == nil {
		return errors.New("session: nil credential")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "%v: creating directory", dir)
		}
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	sealed := hex.EncodeToString(l.cipher.Seal(data))
	if err := os.WriteFile(l.path, []byte(sealed), 0o600); err != nil {
		return err
	}
	l.cached = nil
	return nil
}

func (l *fileStore) Delete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cached = nil
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func NewInMemory() Store {
	return &inMemoryStore{}
}

type inMemoryStore struct {
	mu sync.Mutex
	c  *Credential
}

var _ Store = (*inMemoryStore)(nil)

func (l *inMemoryStore) Path() string {
	return ":memory:"
}

func (l *inMemoryStore) Load() (*Credential, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.c == nil {
		return nil, errors.WithStack(ErrSessionNotFound)
	}
	return l.c, nil
}

func (l *inMemoryStore) Store(c *Credential) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c = c
	return nil
}

func (l *inMemoryStore) Delete() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c = nil
	return nil
}
