package job

import (
	"context"
	"errors"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/filestore"
	"github.com/xxxsen/fieldorder/internal/model"
)

const purgeBatchSize = 100

type purgeableCollections interface {
	ListPurgeable(ctx context.Context, cutoff int64, limit uint) ([]model.FileCollection, error)
	ListFiles(ctx context.Context, collectionID string) ([]model.CollectionFile, error)
	MarkPurged(ctx context.Context, id string, now int64) error
}

// CollectionPurgeJob removes stored objects of collections expired for longer
// than the retention window. Collection rows and share tokens stay; shares of
// a purged collection fail closed when opened.
type CollectionPurgeJob struct {
	collections purgeableCollections
	store       filestore.Store
	retention   time.Duration
	now         func() time.Time
}

func NewCollectionPurgeJob(collections purgeableCollections, store filestore.Store, retentionDays int, now func() time.Time) *CollectionPurgeJob {
	if now == nil {
		now = time.Now
	}
	return &CollectionPurgeJob{
		collections: collections,
		store:       store,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		now:         now,
	}
}

func (j *CollectionPurgeJob) Name() string {
	return "collection_purge"
}

func (j *CollectionPurgeJob) Run(ctx context.Context) error {
	if j.collections == nil || j.store == nil {
		return nil
	}
	now := j.now()
	cutoff := now.Add(-j.retention).Unix()
	logger := logutil.GetLogger(ctx).With(zap.String("job", j.Name()))
	purged := 0
	for {
		items, err := j.collections.ListPurgeable(ctx, cutoff, purgeBatchSize)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := j.purge(ctx, item.ID, now.Unix()); err != nil {
				return err
			}
			purged++
		}
		if len(items) < purgeBatchSize {
			break
		}
	}
	if purged > 0 {
		logger.Info("expired collections purged", zap.Int("count", purged))
	}
	return nil
}

func (j *CollectionPurgeJob) purge(ctx context.Context, collectionID string, now int64) error {
	files, err := j.collections.ListFiles(ctx, collectionID)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := j.store.Delete(ctx, file.FileKey); err != nil && !errors.Is(err, filestore.ErrNotExist) {
			return err
		}
	}
	return j.collections.MarkPurged(ctx, collectionID, now)
}
