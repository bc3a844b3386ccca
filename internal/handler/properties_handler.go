package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/fieldorder/internal/pkg/response"
	"github.com/xxxsen/fieldorder/internal/service"
)

// Properties is the public, unauthenticated client configuration.
type Properties struct {
	Branding             service.Branding `json:"branding"`
	MaxShareLifetimeDays int              `json:"max_share_lifetime_days"`
}

type PropertiesHandler struct {
	properties Properties
}

func NewPropertiesHandler(properties Properties) *PropertiesHandler {
	return &PropertiesHandler{properties: properties}
}

func (h *PropertiesHandler) Get(c *gin.Context) {
	response.Success(c, gin.H{"properties": h.properties})
}
