package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/pkg/errcode"
	"github.com/xxxsen/fieldorder/internal/pkg/response"
	"github.com/xxxsen/fieldorder/internal/service"
)

type ShareHandler struct {
	shares *service.ShareAdminService
}

func NewShareHandler(shares *service.ShareAdminService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

type issueShareRequest struct {
	LifetimeDays int `json:"lifetime_days"`
}

func (h *ShareHandler) IssueForOrder(c *gin.Context) {
	h.issue(c, model.ResourceKindOrder)
}

func (h *ShareHandler) IssueForCollection(c *gin.Context) {
	h.issue(c, model.ResourceKindFileCollection)
}

func (h *ShareHandler) ListForOrder(c *gin.Context) {
	h.list(c, model.ResourceKindOrder)
}

func (h *ShareHandler) ListForCollection(c *gin.Context) {
	h.list(c, model.ResourceKindFileCollection)
}

func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.shares.Revoke(c.Request.Context(), getPrincipal(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ShareHandler) issue(c *gin.Context, kind model.ResourceKind) {
	var req issueShareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LifetimeDays <= 0 {
		response.Error(c, errcode.ErrInvalid, "lifetime_days must be a positive number of days")
		return
	}
	issued, err := h.shares.Issue(c.Request.Context(), getPrincipal(c), kind, c.Param("id"), req.LifetimeDays)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, issued)
}

func (h *ShareHandler) list(c *gin.Context, kind model.ResourceKind) {
	items, err := h.shares.ListActive(c.Request.Context(), getPrincipal(c), kind, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}
