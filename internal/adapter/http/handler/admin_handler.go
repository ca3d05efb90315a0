package handler

import (
	"digital-delivery-gateway/internal/adapter/http/dto"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/pkg/apperror"
	"digital-delivery-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// AdminHandler serves operator endpoints behind JWTAdmin.
type AdminHandler struct {
	notifySvc  ports.NotificationService
	supportSvc ports.SupportService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(notifySvc ports.NotificationService, supportSvc ports.SupportService) *AdminHandler {
	return &AdminHandler{notifySvc: notifySvc, supportSvc: supportSvc}
}

// SendTestEmail handles POST /api/admin/test-email.
func (h *AdminHandler) SendTestEmail(c *gin.Context) {
	id, err := h.notifySvc.SendTestEmail(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.MessageSentResponse{MessageID: id})
}

// ResendOrderEmail handles POST /api/admin/orders/:publicOrderId/resend.
func (h *AdminHandler) ResendOrderEmail(c *gin.Context) {
	var uri dto.OrderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrNotFound("Order"))
		return
	}

	id, err := h.supportSvc.ResendOrderEmail(c.Request.Context(), uri.PublicOrderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.MessageSentResponse{MessageID: id})
}

// FindOrders handles GET /api/admin/orders?email=.
func (h *AdminHandler) FindOrders(c *gin.Context) {
	q := dto.OrderLookupQuery{Email: c.Query("email")}
	dto.TrimStrings(&q)
	if err := binding.Validator.ValidateStruct(&q); err != nil {
		response.Error(c, apperror.Validation("a valid email query parameter is required"))
		return
	}

	ids, err := h.supportSvc.FindOrdersByEmail(c.Request.Context(), q.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.OrderLookupResponse{PublicOrderIDs: ids})
}
