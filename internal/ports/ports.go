package ports

import (
	"context"
	"time"

	"CRMDashboard/internal/domain"
)

// CRMSource pulls entity collections from the CRM backend.
type CRMSource interface {
	// FetchSnapshot never fails because of a single collection; failed
	// collections come back empty and are listed in Snapshot.Failed.
	FetchSnapshot(ctx context.Context) (domain.Snapshot, error)
	WorkGiven(ctx context.Context, employeeID string) ([]domain.WorkGiven, error)
	TrackingSummary(ctx context.Context) (domain.TrackingSummary, error)
}

// SnapshotCache keeps the last fetched snapshot between requests.
type SnapshotCache interface {
	Load(ctx context.Context) (domain.Snapshot, bool, error)
	Store(ctx context.Context, snapshot domain.Snapshot) error
}

// HistoryRepository persists bucket counts per refresh.
type HistoryRepository interface {
	SaveCounts(ctx context.Context, counts []domain.BucketCount) error
	History(ctx context.Context, metric string, limit int) ([]domain.BucketCount, error)
}

// Notifier streams dashboard digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// InsightsClient turns a JSON status payload into short prose.
type InsightsClient interface {
	Insights(ctx context.Context, payload []byte) (string, error)
}

// Recorder exports refresh results as metrics.
type Recorder interface {
	ObserveCounts(counts []domain.BucketCount)
	ObserveRefresh(elapsed time.Duration, err error)
	FetchFailed(collection string)
}

// Scheduler controls when refreshes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
