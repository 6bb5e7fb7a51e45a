// Package session keeps issued login tokens in badger so that logout can
// revoke them before they expire.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"opscurator/internal/domain"
)

const keyPrefix = "session:"

type record struct {
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens (or creates) an on-disk store under dir.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger.Sugar()})
	return open(opts, logger)
}

// OpenInMemory is used by tests and by `serve` when no session dir is set.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{logger.Sugar()})
	return open(opts, logger)
}

func open(opts badger.Options, logger *zap.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return &Store{db: db, logger: logger.Named("sessions")}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Put(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := json.Marshal(record{UserID: userID, IssuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(keyPrefix+tokenID), val)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get returns the user that owns tokenID, or domain.ErrNotFound when the
// session was revoked or has expired.
func (s *Store) Get(ctx context.Context, tokenID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + tokenID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return rec.UserID, nil
}

func (s *Store) Delete(ctx context.Context, tokenID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + tokenID))
	})
}

// RunGC compacts the value log every interval until ctx is done.
func (s *Store) RunGC(ctx context.Context, interval time.Duration) error {
	if s.db.Opts().InMemory {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				err := s.db.RunValueLogGC(0.5)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.logger.Warn("value log gc failed", zap.Error(err))
					}
					break
				}
			}
		}
	}
}

// badgerLogger routes badger's own logging through zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
