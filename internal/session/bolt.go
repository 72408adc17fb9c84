// Copyright (c) 2025 @AmarnathCJD

package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/amarnathcjd/moocauth/internal/sm4"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var bucketCredentials = []byte("credentials")

// BoltDB keeps one credential per account in a bbolt database, each value
// sealed with SM4 like the single-file cache.
type BoltDB struct {
	db     *bbolt.DB
	path   string
	cipher *sm4.Schedule
}

func OpenBolt(path, secret string) (*BoltDB, error) {
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

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "session: create directory")
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "session: open bolt db")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCredentials)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "session: create bucket")
	}
	return &BoltDB{db: db, path: path, cipher: c}, nil
}

func (b *BoltDB) Close() error { return b.db.Close() }

// Accounts lists the accounts with a stored credential, sorted.
func (b *BoltDB) Accounts() ([]string, error) {
	var out []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCredentials).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	sort.Strings(out)
	return out, err
}

// Account returns a Store view of one account's credential.
func (b *BoltDB) Account(name string) Store {
	return &boltStore{b: b, account: name}
}

type boltStore struct {
	b       *BoltDB
	account string
}

var _ Store = (*boltStore)(nil)

func (s *boltStore) Path() string {
	return s.b.path + "#" + s.account
}

func (s *boltStore) Load() (*Credential, error) {
	var sealed []byte
	err := s.b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketCredentials).Get([]byte(s.account)); v != nil {
			sealed = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sealed == nil {
		return nil, errors.Wrap(ErrSessionNotFound, s.Path())
	}

	plain, err := s.b.cipher.Open(sealed)
	if err != nil {
		return nil, errors.Wrap(ErrCorrupted, err.Error())
	}
	c := new(Credential)
	if err := json.Unmarshal(plain, c); err != nil {
		return nil, errors.Wrap(ErrCorrupted, err.Error())
	}
	return c, nil
}

func (s *boltStore) Store(c *Credential) error {
	if c == nil {
		return errors.New("session: nil credential")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	sealed := s.b.cipher.Seal(data)
	return s.b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCredentials).Put([]byte(s.account), sealed)
	})
}

func (s *boltStore) Delete() error {
	return s.b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCredentials).Delete([]byte(s.account))
	})
}
