package dbutil

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM share_tokens WHERE token = ? AND revoked_at IS NULL", []interface{}{"abc"})
	require.Equal(t, "SELECT id FROM share_tokens WHERE token = $1 AND revoked_at IS NULL", query)
	require.Equal(t, []interface{}{"abc"}, args)
}

func TestFinalizeRewritesLimit(t *testing.T) {
	query, args := Finalize("SELECT id FROM orders WHERE created_by = ? LIMIT ?, ?", []interface{}{"u1", uint(20), uint(10)})
	require.Equal(t, "SELECT id FROM orders WHERE created_by = $1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"u1", uint(10), uint(20)}, args)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.True(t, IsConflict(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(fmt.Errorf("boom")))
}
