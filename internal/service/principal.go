package service

import "github.com/xxxsen/fieldorder/internal/model"

// Principal is an authenticated caller of the management surface.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}
