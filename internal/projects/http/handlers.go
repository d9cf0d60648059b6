package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bidboard/bidboard-backend/internal/auth"
	"github.com/bidboard/bidboard-backend/internal/projects/domain"
	"github.com/bidboard/bidboard-backend/internal/projects/repository"
	"github.com/bidboard/bidboard-backend/internal/projects/service"
)

type Handler struct {
	projects *service.ProjectService
	items    *service.LineItemService
}

func Register(rg *gin.RouterGroup, projects *service.ProjectService, items *service.LineItemService) {
	h := &Handler{projects: projects, items: items}

	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:project_id", h.get)
	rg.PATCH("/:project_id", h.update)
	rg.DELETE("/:project_id", h.delete)
	rg.POST("/:project_id/duplicate", h.duplicate)

	rg.POST("/:project_id/line-items", h.addLineItem)
	rg.PATCH("/:project_id/line-items/:item_id", h.updateLineItem)
	rg.DELETE("/:project_id/line-items/:item_id", h.deleteLineItem)
	rg.POST("/:project_id/line-items/:item_id/duplicate", h.duplicateLineItem)
}

func (h *Handler) list(c *gin.Context) {
	userID := auth.UserID(c)
	items, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	views := make([]*projectView, 0, len(items))
	for i := range items {
		v, err := newProjectView(&items[i])
		if err != nil {
			respondErr(c, err)
			return
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": views})
}

func (h *Handler) get(c *gin.Context) {
	userID := auth.UserID(c)
	p, err := h.projects.Get(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	v, err := newProjectView(p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": v})
}

func (h *Handler) create(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	p, err := h.projects.Create(c.Request.Context(), userID, &domain.Project{
		Name:    req.Name,
		GC:      req.GC,
		Contact: req.Contact,
		DueDate: req.DueDate,
		Status:  domain.Status(req.Status),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	v, err := newProjectView(p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": v})
}

func (h *Handler) update(c *gin.Context) {
	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	fields := repository.ProjectUpdate{
		Name:    req.Name,
		GC:      req.GC,
		Contact: req.Contact,
		DueDate: req.DueDate,
	}
	if req.Status != nil {
		st := domain.Status(*req.Status)
		fields.Status = &st
	}

	userID := auth.UserID(c)
	p, err := h.projects.Update(c.Request.Context(), userID, c.Param("project_id"), fields)
	if err != nil {
		respondErr(c, err)
		return
	}
	v, err := newProjectView(p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": v})
}

func (h *Handler) delete(c *gin.Context) {
	userID := auth.UserID(c)
	if err := h.projects.Delete(c.Request.Context(), userID, c.Param("project_id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) duplicate(c *gin.Context) {
	userID := auth.UserID(c)
	p, err := h.projects.Duplicate(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	v, err := newProjectView(p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": v})
}

// respondErr maps gateway errors onto HTTP statuses.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}
