package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShareTokenValidAt(t *testing.T) {
	revokedAt := int64(150)
	tests := []struct {
		name  string
		token ShareToken
		now   int64
		valid bool
		state string
	}{
		{name: "active", token: ShareToken{ExpiresAt: 200}, now: 100, valid: true, state: ShareStateActive},
		{name: "expires exactly now", token: ShareToken{ExpiresAt: 100}, now: 100, valid: false, state: ShareStateExpired},
		{name: "expired", token: ShareToken{ExpiresAt: 50}, now: 100, valid: false, state: ShareStateExpired},
		{name: "revoked before expiry", token: ShareToken{ExpiresAt: 200, RevokedAt: &revokedAt}, now: 100, valid: false, state: ShareStateRevoked},
		{name: "revoked and expired", token: ShareToken{ExpiresAt: 50, RevokedAt: &revokedAt}, now: 100, valid: false, state: ShareStateRevoked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.valid, tt.token.ValidAt(tt.now))
			require.Equal(t, tt.state, tt.token.StateAt(tt.now))
		})
	}
}

func TestResourceKindValid(t *testing.T) {
	require.True(t, ResourceKindOrder.Valid())
	require.True(t, ResourceKindFileCollection.Valid())
	require.False(t, ResourceKind("document").Valid())
	require.False(t, ResourceKind("").Valid())
}
