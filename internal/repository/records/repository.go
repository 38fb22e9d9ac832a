// Package records maps the weighbridge state onto the two persisted keys.
package records

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
	"github.com/mamadbah2/weighbridge/internal/repository/kv"
)

const (
	EntriesKey     = "entries"
	PreferencesKey = "preferences"
)

// Repository loads and saves the record collection and preferences.
type Repository struct {
	store  kv.Store
	logger *zap.Logger
}

// NewRepository wires a repository over the given store.
func NewRepository(store kv.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, logger: logger}
}

// LoadRecords returns the persisted records. A missing key yields an empty
// collection; unreadable data is reported as an error.
func (r *Repository) LoadRecords(ctx context.Context) ([]models.Record, error) {
	raw, ok, err := r.store.Get(ctx, EntriesKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", EntriesKey, err)
	}
	if !ok {
		return []models.Record{}, nil
	}
	var out []models.Record
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", EntriesKey, err)
	}
	if out == nil {
		out = []models.Record{}
	}
	return out, nil
}

// SaveRecords serializes the full collection under EntriesKey. An empty
// collection removes the key.
func (r *Repository) SaveRecords(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		if err := r.store.Delete(ctx, EntriesKey); err != nil {
			return fmt.Errorf("delete %s: %w", EntriesKey, err)
		}
		return nil
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", EntriesKey, err)
	}
	if err := r.store.Set(ctx, EntriesKey, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", EntriesKey, err)
	}
	return nil
}

// LoadPreferences returns the persisted preferences, or the defaults when
// nothing has been saved yet.
func (r *Repository) LoadPreferences(ctx context.Context) (models.Preferences, error) {
	prefs := models.DefaultPreferences()
	raw, ok, err := r.store.Get(ctx, PreferencesKey)
	if err != nil {
		return prefs, fmt.Errorf("load %s: %w", PreferencesKey, err)
	}
	if !ok {
		return prefs, nil
	}
	// Keys absent from the blob, or a null blob, keep their defaults.
	decoded := prefs
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return prefs, fmt.Errorf("decode %s: %w", PreferencesKey, err)
	}
	return decoded, nil
}

// SavePreferences serializes prefs under PreferencesKey.
func (r *Repository) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", PreferencesKey, err)
	}
	if err := r.store.Set(ctx, PreferencesKey, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", PreferencesKey, err)
	}
	return nil
}

// Restore rehydrates both keys best-effort: each failure is logged and the
// corresponding default is used.
func (r *Repository) Restore(ctx context.Context) ([]models.Record, models.Preferences) {
	recs, err := r.LoadRecords(ctx)
	if err != nil {
		r.logger.Warn("ignoring persisted records", zap.Error(err))
		recs = []models.Record{}
	}
	prefs, err := r.LoadPreferences(ctx)
	if err != nil {
		r.logger.Warn("ignoring persisted preferences", zap.Error(err))
		prefs = models.DefaultPreferences()
	}
	r.logger.Debug("state restored", zap.Int("records", len(recs)), zap.String("theme", string(prefs.Theme)), zap.Bool("alarm", prefs.AlarmEnabled))
	return recs, prefs
}
