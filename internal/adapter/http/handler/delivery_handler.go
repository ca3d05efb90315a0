package handler

import (
	"mime"
	"net/http"
	"path"

	"digital-delivery-gateway/internal/adapter/http/dto"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/pkg/apperror"
	"digital-delivery-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// DeliveryHandler serves order listings and download redirects.
type DeliveryHandler struct {
	deliverySvc ports.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(deliverySvc ports.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliverySvc: deliverySvc}
}

// ListOrderProducts handles GET /api/getsignedorderurls/:publicOrderId.
// A malformed id gets the same 404 as an unknown one.
func (h *DeliveryHandler) ListOrderProducts(c *gin.Context) {
	var uri dto.OrderURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrNotFound("Order"))
		return
	}

	products, err := h.deliverySvc.ListProducts(c.Request.Context(), uri.PublicOrderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Products(c, products)
}

// Download handles GET /download/:code.
func (h *DeliveryHandler) Download(c *gin.Context) {
	var uri dto.DownloadURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrNotFound("Download link"))
		return
	}

	ticket, err := h.deliverySvc.Redeem(c.Request.Context(), uri.Code, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	if disposition := contentDisposition(ticket.Asset.OriginalFilePath); disposition != "" {
		c.Header("Content-Disposition", disposition)
	}
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, ticket.Asset.SignedURL)
}

// contentDisposition names the saved file after the uploaded original.
func contentDisposition(originalPath string) string {
	if originalPath == "" {
		return ""
	}
	name := path.Base(originalPath)
	if name == "." || name == "/" {
		return ""
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
