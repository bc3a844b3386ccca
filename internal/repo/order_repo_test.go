package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/fieldorder/internal/model"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
	"github.com/xxxsen/fieldorder/internal/pkg/timeutil"
	"github.com/xxxsen/fieldorder/internal/repo"
	"github.com/xxxsen/fieldorder/internal/testutil"
)

func TestOrderRepoSoftDeleteHidesOrder(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	orders := repo.NewOrderRepo(db)
	now := timeutil.NowUnix()
	order := &model.Order{
		ID:        testutil.NewID("order"),
		Title:     "Boiler service",
		Status:    "open",
		Priority:  "normal",
		CreatedBy: "user-1",
		Ctime:     now,
		Mtime:     now,
	}
	require.NoError(t, orders.Create(ctx, order))

	fetched, err := orders.GetLive(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "Boiler service", fetched.Title)
	require.Nil(t, fetched.DeletedAt)

	require.NoError(t, orders.SoftDelete(ctx, order.ID, "admin-1", now+1))
	_, err = orders.GetLive(ctx, order.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.ErrorIs(t, orders.SoftDelete(ctx, order.ID, "admin-1", now+2), appErr.ErrNotFound)
}

func TestOrderChildrenReads(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	now := timeutil.NowUnix()
	orderID := testutil.NewID("order")
	journal := repo.NewJournalRepo(db)
	photos := repo.NewPhotoRepo(db)
	timeEntries := repo.NewTimeEntryRepo(db)

	entryID := testutil.NewID("journal")
	require.NoError(t, journal.CreateJournalEntry(ctx, &model.JournalEntry{ID: entryID, OrderID: orderID, UserID: "u1", Content: "first", Ctime: now}))
	require.NoError(t, journal.CreateSummaryEntry(ctx, &model.SummaryEntry{ID: testutil.NewID("summary"), OrderID: orderID, UserID: "u1", Content: "done", Ctime: now}))
	require.NoError(t, photos.Create(ctx, &model.Photo{ID: testutil.NewID("photo"), OrderID: orderID, FileKey: "k-direct", UploadedBy: "u1", Ctime: now}))
	require.NoError(t, photos.Create(ctx, &model.Photo{ID: testutil.NewID("photo"), OrderID: orderID, JournalEntryID: entryID, FileKey: "k-entry", UploadedBy: "u1", Ctime: now + 1}))
	stageID := testutil.NewID("stage")
	require.NoError(t, timeEntries.CreateStage(ctx, &model.OrderStage{ID: stageID, OrderID: orderID, Name: "Install"}))
	require.NoError(t, timeEntries.Create(ctx, &model.TimeEntry{ID: testutil.NewID("time"), OrderID: orderID, StageID: stageID, UserID: "u1", WorkDate: "2025-03-01", Hours: 1.5, Ctime: now}))

	entries, err := journal.ListJournalByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	summaries, err := journal.ListSummaryByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	items, err := photos.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Empty(t, items[0].JournalEntryID)
	require.Equal(t, entryID, items[1].JournalEntryID)

	photo, err := photos.GetByFileKey(ctx, orderID, "k-entry")
	require.NoError(t, err)
	require.Equal(t, entryID, photo.JournalEntryID)
	_, err = photos.GetByFileKey(ctx, testutil.NewID("order"), "k-entry")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	times, err := timeEntries.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, times, 1)
	require.Equal(t, 1.5, times[0].Hours)
	require.Equal(t, stageID, times[0].StageID)
	stages, err := timeEntries.ListStagesByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, stages, 1)
}

func TestPhotosOfDeletedJournalEntryAreHidden(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	now := timeutil.NowUnix()
	orderID := testutil.NewID("order")
	journal := repo.NewJournalRepo(db)
	photos := repo.NewPhotoRepo(db)

	entryID := testutil.NewID("journal")
	require.NoError(t, journal.CreateJournalEntry(ctx, &model.JournalEntry{ID: entryID, OrderID: orderID, UserID: "u1", Content: "leak found", Ctime: now}))
	require.NoError(t, photos.Create(ctx, &model.Photo{ID: testutil.NewID("photo"), OrderID: orderID, FileKey: "k-direct", UploadedBy: "u1", Ctime: now}))
	require.NoError(t, photos.Create(ctx, &model.Photo{ID: testutil.NewID("photo"), OrderID: orderID, JournalEntryID: entryID, FileKey: "k-entry", UploadedBy: "u1", Ctime: now + 1}))

	_, err := db.ExecContext(ctx, "UPDATE journal_entries SET deleted_at = $1 WHERE id = $2", now+2, entryID)
	require.NoError(t, err)

	items, err := photos.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "k-direct", items[0].FileKey)

	_, err = photos.GetByFileKey(ctx, orderID, "k-entry")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	direct, err := photos.GetByFileKey(ctx, orderID, "k-direct")
	require.NoError(t, err)
	require.Empty(t, direct.JournalEntryID)
}
