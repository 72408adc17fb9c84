package session_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amarnathcjd/moocauth/internal/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "EDUWEBDEVICE=abc; NTESSTUDYSI=0123456789abcdef0123456789abcdef; STUDY_INFO=x"

func TestExtractCSRFKey(t *testing.T) {
	key, err := session.ExtractCSRFKey(testCookie)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", key)

	key, err = session.ExtractCSRFKey("NTESSTUDYSI=k")
	require.NoError(t, err)
	assert.Equal(t, "k", key)

	for _, bad := range []string{"", "A=1; B=2", "NTESSTUDYSI=", "XNTESSTUDYSI=1"} {
		_, err = session.ExtractCSRFKey(bad)
		assert.True(t, errors.Is(err, session.ErrNoCSRFKey), bad)
	}
}

func TestCredentialValid(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c, err := session.NewCredential(testCookie, now, time.Hour)
	require.NoError(t, err)
	assert.True(t, c.Valid(now))
	assert.True(t, c.Valid(now.Add(59*time.Minute)))
	assert.False(t, c.Valid(now.Add(time.Hour)))

	c, err = session.NewCredential(testCookie, now, 0)
	require.NoError(t, err)
	assert.True(t, c.Valid(now.Add(1000*time.Hour)))

	var nilCred *session.Credential
	assert.False(t, nilCred.Valid(now))
	assert.False(t, (&session.Credential{Cookie: "a"}).Valid(now))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "cookies.json")

	store, err := session.NewFromFile(path, "secret")
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	_, err = store.Load()
	assert.True(t, errors.Is(err, session.ErrSessionNotFound))

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c, err := session.NewCredential(testCookie, now, 24*time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Store(c))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "NTESSTUDYSI", "cache must not be plaintext")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, c.Cookie, loaded.Cookie)
	assert.Equal(t, c.CSRFKey, loaded.CSRFKey)
	assert.True(t, c.ExpiresAt.Equal(loaded.ExpiresAt))

	again, err := store.Load()
	require.NoError(t, err)
	assert.Same(t, loaded, again, "unchanged file is served from memory")

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete(), "deleting twice is fine")
	_, err = store.Load()
	assert.True(t, errors.Is(err, session.ErrSessionNotFound))
}

func TestFileStoreWrongSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := session.NewFromFile(path, "")
	require.NoError(t, err)
	require.NoError(t, store.Store(&session.Credential{Cookie: testCookie, CSRFKey: "k"}))

	other, err := session.NewFromFile(path, "not the same")
	require.NoError(t, err)
	_, err = other.Load()
	assert.True(t, errors.Is(err, session.ErrCorrupted))

	require.NoError(t, os.WriteFile(path, []byte("zz"), 0o600))
	_, err = store.Load()
	assert.True(t, errors.Is(err, session.ErrCorrupted))
}

func TestDeriveKey(t *testing.T) {
	a, err := session.DeriveKey("secret", "cookies.json")
	require.NoError(t, err)
	b, err := session.DeriveKey("secret", "cookies.json")
	require.NoError(t, err)
	c, err := session.DeriveKey("secret", "other.json")
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCachedProvider(t *testing.T) {
	var calls int32
	acquire := func(ctx context.Context) (*session.Credential, error) {
		atomic.AddInt32(&calls, 1)
		return session.NewCredential(testCookie, time.Now(), time.Hour)
	}

	store := session.NewInMemory()
	p := session.NewCachedProvider(store, acquire, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := p.Credential(context.Background())
			assert.NoError(t, err)
			assert.True(t, strings.HasPrefix(c.CSRFKey, "0123"))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.NoError(t, p.Invalidate())
	_, err := p.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedProviderExpired(t *testing.T) {
	store := session.NewInMemory()
	require.NoError(t, store.Store(&session.Credential{
		Cookie:    "old",
		CSRFKey:   "old",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	p := session.NewCachedProvider(store, func(context.Context) (*session.Credential, error) {
		return &session.Credential{Cookie: "new", CSRFKey: "new"}, nil
	}, nil)

	c, err := p.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", c.Cookie)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Cookie)
}

func TestCachedProviderErrors(t *testing.T) {
	p := session.NewCachedProvider(nil, nil, nil)
	_, err := p.Credential(context.Background())
	assert.True(t, errors.Is(err, session.ErrSessionNotFound))

	boom := errors.New("captcha required")
	p = session.NewCachedProvider(nil, func(context.Context) (*session.Credential, error) {
		return nil, boom
	}, nil)
	_, err = p.Credential(context.Background())
	assert.True(t, errors.Is(err, boom))

	p = session.NewCachedProvider(nil, func(context.Context) (*session.Credential, error) {
		return &session.Credential{}, nil
	}, nil)
	_, err = p.Credential(context.Background())
	assert.Error(t, err)
}
