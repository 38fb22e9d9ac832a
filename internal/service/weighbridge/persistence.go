package weighbridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
)

// StateSaver is the persistence port used by the persistence listener.
type StateSaver interface {
	SaveRecords(ctx context.Context, records []models.Record) error
	SavePreferences(ctx context.Context, prefs models.Preferences) error
}

// PersistOnChange returns a listener that writes the changed key after every
// mutation. Write failures are logged and otherwise ignored.
func PersistOnChange(saver StateSaver, logger *zap.Logger) Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, change Change) {
		var err error
		switch change.Kind {
		case RecordsChanged:
			err = saver.SaveRecords(ctx, change.Records)
		case PreferencesChanged:
			err = saver.SavePreferences(ctx, change.Preferences)
		}
		if err != nil {
			logger.Warn("failed to persist state", zap.Int("kind", int(change.Kind)), zap.Error(err))
		}
	}
}
