package storage

import (
	"context"
	"time"

	"github.com/julianstephens/dayprompt/internal/models"
	"github.com/julianstephens/dayprompt/internal/scheduler"
)

// AlertQueue persists one-shot alerts until the dispatcher delivers them.
type AlertQueue interface {
	// UpsertAlert inserts or replaces the alert with the same id and clears
	// its delivery mark.
	UpsertAlert(ctx context.Context, alert models.PendingAlert) error
	DeleteAlert(ctx context.Context, id string) error
	ListAlerts(ctx context.Context, includeDelivered bool) ([]models.PendingAlert, error)
	MarkAlertDelivered(ctx context.Context, id string, at time.Time) error
}

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	Close() error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	scheduler.EntryStore
	scheduler.StateStore
	AlertQueue

	// Utils
	GetConfigPath() string
}
