// Package store persists the holdings list. The json driver writes one
// file; the badger driver keeps one record per holding in a badgerhold
// database.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/pkg/models"
)

// Driver names accepted in storage.driver.
const (
	DriverJSON   = "json"
	DriverBadger = "badger"
)

// Store loads and saves the holdings list. Load returns nil and no error
// when nothing has been saved yet; a saved empty list loads as empty.
type Store interface {
	Load(ctx context.Context) ([]models.Holding, error)
	Save(ctx context.Context, holdings []models.Holding) error
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(cfg config.StorageConfig, logger *log.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverJSON, "":
		return NewJSONStore(cfg.Path), nil
	case DriverBadger:
		return OpenBadgerStore(badgerDir(cfg.Path), logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// badgerDir turns the default holdings.json path into a sibling directory.
func badgerDir(path string) string {
	if ext := filepath.Ext(path); strings.EqualFold(ext, ".json") {
		return strings.TrimSuffix(path, ext) + ".badger"
	}
	return path
}
