package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bidboard/bidboard-backend/internal/auth"
	"github.com/bidboard/bidboard-backend/internal/projects/domain"
	"github.com/bidboard/bidboard-backend/internal/projects/repository"
)

func (h *Handler) addLineItem(c *gin.Context) {
	var req createLineItemReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Service) == "" ||
		req.Quantity == nil || req.UnitPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	li, err := h.items.Add(c.Request.Context(), userID, c.Param("project_id"), &domain.LineItem{
		Service:   req.Service,
		Quantity:  *req.Quantity,
		Unit:      req.Unit,
		UnitPrice: *req.UnitPrice,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "lineItem": newLineItemView(li)})
}

func (h *Handler) updateLineItem(c *gin.Context) {
	var req updateLineItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	li, err := h.items.Update(c.Request.Context(), userID, c.Param("item_id"), repository.LineItemUpdate{
		Service:   req.Service,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "lineItem": newLineItemView(li)})
}

func (h *Handler) deleteLineItem(c *gin.Context) {
	userID := auth.UserID(c)
	if err := h.items.Delete(c.Request.Context(), userID, c.Param("item_id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) duplicateLineItem(c *gin.Context) {
	userID := auth.UserID(c)
	li, err := h.items.Duplicate(c.Request.Context(), userID, c.Param("item_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "lineItem": newLineItemView(li)})
}
