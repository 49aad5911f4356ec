package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/phuslu/log"
	"github.com/timshannon/badgerhold/v4"

	"github.com/seenimoa/stockpulse/pkg/models"
)

const metaKey = "holdings"

// holdingRecord is one stored holding; Seq keeps the portfolio order.
type holdingRecord struct {
	Symbol string
	Shares float64
	Seq    int
}

// storeMeta marks that a list was saved, so an empty list is not mistaken
// for missing state.
type storeMeta struct {
	Saved bool
	Count int
}

// BadgerStore keeps holdings in a badgerhold database.
type BadgerStore struct {
	store  *badgerhold.Store
	logger *log.Logger
}

// OpenBadgerStore opens (or creates) the database in dir.
func OpenBadgerStore(dir string, logger *log.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	logger.Debug().Str("path", dir).Msg("badger holdings store opened")
	return &BadgerStore{store: store, logger: logger}, nil
}

// Load returns the saved holdings in order.
func (s *BadgerStore) Load(_ context.Context) ([]models.Holding, error) {
	var meta storeMeta
	if err := s.store.Get(metaKey, &meta); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read holdings meta: %w", err)
	}

	var records []holdingRecord
	if err := s.store.Find(&records, (&badgerhold.Query{}).SortBy("Seq")); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	holdings := make([]models.Holding, 0, len(records))
	for _, r := range records {
		holdings = append(holdings, models.Holding{Symbol: r.Symbol, Shares: r.Shares})
	}
	return holdings, nil
}

// Save replaces every stored holding with the given list in one
// transaction; a failed save leaves the previous list in place.
func (s *BadgerStore) Save(ctx context.Context, holdings []models.Holding) error {
	return s.store.Badger().Update(func(tx *badger.Txn) error {
		if err := s.store.TxDeleteMatching(tx, &holdingRecord{}, nil); err != nil {
			return fmt.Errorf("failed to clear holdings: %w", err)
		}
		for i, h := range holdings {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := &holdingRecord{Symbol: h.Symbol, Shares: h.Shares, Seq: i}
			if err := s.store.TxUpsert(tx, h.Symbol, rec); err != nil {
				return fmt.Errorf("failed to store holding %s: %w", h.Symbol, err)
			}
		}
		if err := s.store.TxUpsert(tx, metaKey, &storeMeta{Saved: true, Count: len(holdings)}); err != nil {
			return fmt.Errorf("failed to store holdings meta: %w", err)
		}
		return nil
	})
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
