package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

func staticLink(_ context.Context, fileKey, _ string) (string, error) {
	return "/files/" + fileKey, nil
}

func TestProjectOrderContent(t *testing.T) {
	env := newTestEnv(t)
	view, err := env.projector.ProjectOrder(context.Background(), orderID, staticLink)
	require.NoError(t, err)

	require.Equal(t, "Boiler service", view.Title)
	require.Equal(t, "ACME", view.CustomerName)
	require.Equal(t, "PO-7", view.CustomerRef)
	require.Equal(t, "2025-03-10", view.DueDate)

	require.Len(t, view.Photos, 1)
	require.Equal(t, "/files/photo-site", view.Photos[0].URL)

	require.Len(t, view.Journal, 1)
	require.Contains(t, view.Journal[0].ContentHTML, "<strong>valve</strong>")
	require.Len(t, view.Journal[0].Photos, 1)
	require.Equal(t, "valve.jpg", view.Journal[0].Photos[0].Caption)

	require.Len(t, view.Summaries, 1)
	require.Equal(t, "Job complete", view.Summaries[0].Content)

	require.Len(t, view.TimeEntries, 3)
	require.Equal(t, "Ana Field", view.TimeEntries[0].Technician)
	require.Equal(t, "Inspection", view.TimeEntries[0].Stage)
	require.Equal(t, unknownTechnician, view.TimeEntries[1].Technician)
	require.Equal(t, unknownTechnician, view.TimeEntries[2].Technician)
	require.Equal(t, 3.85, view.TotalHours)
}

func TestProjectOrderOmitsInternalFields(t *testing.T) {
	env := newTestEnv(t)
	view, err := env.projector.ProjectOrder(context.Background(), orderID, staticLink)
	require.NoError(t, err)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	body := string(raw)
	for _, field := range []string{"created_by", "user_id", "uploaded_by", "deleted_at", "deleted_by", "order_id", "journal_entry_id", `"id"`} {
		require.NotContains(t, body, field)
	}
	for _, value := range []string{ownerID, adminID, "u-gone", orderID, "j1", "p1", "t1", "st1"} {
		require.NotContains(t, body, `"`+value+`"`)
	}
}

func TestProjectOrderSoftDeletedIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.orders.softDelete(orderID, adminID, env.clock.Now().Unix())

	_, err := env.projector.ProjectOrder(context.Background(), orderID, staticLink)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestProjectOrderChildFailureFailsWhole(t *testing.T) {
	env := newTestEnv(t)
	env.journal.err = errors.New("timeout")

	view, err := env.projector.ProjectOrder(context.Background(), orderID, staticLink)
	require.Error(t, err)
	require.Nil(t, view)
	require.False(t, appErr.IsNotFound(err))
}

func TestProjectFileCollection(t *testing.T) {
	env := newTestEnv(t)
	view, err := env.projector.ProjectFileCollection(context.Background(), collectionID, staticLink)
	require.NoError(t, err)
	require.Equal(t, "Handover docs", view.Name)
	require.Len(t, view.Files, 2)
	require.Equal(t, "/files/file-a", view.Files[0].URL)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "uploaded_by")
	require.NotContains(t, string(raw), ownerID)
	require.False(t, strings.Contains(string(raw), `"collection_id"`))
}

func TestProjectFileCollectionExpiredOrPurged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clock.Advance(61 * day)
	_, err := env.projector.ProjectFileCollection(ctx, collectionID, staticLink)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	env = newTestEnv(t)
	purgedAt := env.clock.Now().Unix()
	env.collections.collections[collectionID].PurgedAt = &purgedAt
	_, err = env.projector.ProjectFileCollection(ctx, collectionID, staticLink)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = env.projector.ProjectFileCollection(ctx, "missing", staticLink)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDisplayNamesAreCached(t *testing.T) {
	env := newTestEnv(t)
	names := NewDisplayNames(env.users, 8, time.Minute)

	got, err := names.Resolve(context.Background(), []string{ownerID, ownerID, otherTechID})
	require.NoError(t, err)
	require.Equal(t, "Ana Field", got[ownerID])
	require.Equal(t, "Bo Other", got[otherTechID])
	require.Equal(t, 1, env.users.lookups)

	_, err = names.Resolve(context.Background(), []string{ownerID, otherTechID})
	require.NoError(t, err)
	require.Equal(t, 1, env.users.lookups)
}
