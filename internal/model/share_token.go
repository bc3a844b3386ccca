package model

type ResourceKind string

const (
	ResourceKindOrder          ResourceKind = "order"
	ResourceKindFileCollection ResourceKind = "file_collection"
)

func (k ResourceKind) Valid() bool {
	return k == ResourceKindOrder || k == ResourceKindFileCollection
}

const (
	ShareStateActive  = "active"
	ShareStateExpired = "expired"
	ShareStateRevoked = "revoked"
)

type ShareToken struct {
	ID           string       `json:"id"`
	Token        string       `json:"token"`
	ResourceKind ResourceKind `json:"resource_kind"`
	ResourceID   string       `json:"resource_id"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    int64        `json:"created_at"`
	ExpiresAt    int64        `json:"expires_at"`
	RevokedAt    *int64       `json:"revoked_at,omitempty"`
}

// ValidAt reports whether the token grants access at unix time now.
func (t *ShareToken) ValidAt(now int64) bool {
	return t.RevokedAt == nil && t.ExpiresAt > now
}

// StateAt derives the lifecycle state; expiry is never stored.
func (t *ShareToken) StateAt(now int64) string {
	switch {
	case t.RevokedAt != nil:
		return ShareStateRevoked
	case t.ExpiresAt <= now:
		return ShareStateExpired
	default:
		return ShareStateActive
	}
}
