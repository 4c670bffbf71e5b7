package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/glowday/api/internal/constants"
	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/service"
)

// respondWithError maps a service error onto the error envelope.
func respondWithError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	constants.RespondError(c, status, http.StatusText(status), apperrors.Messages(err))
}

// parseID reads the :id route parameter. Anything non-numeric is rejected
// before it reaches the store.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidID
	}
	return uint(id), nil
}

// ResourceHandler serves the five standard endpoints for one entity. The
// decode function turns a request body into a create payload; entities that
// are never created over HTTP can pass nil and skip registering the route.
type ResourceHandler[T any] struct {
	svc    *service.CRUDService[T]
	decode func(c *gin.Context) (*T, error)
}

func NewResourceHandler[T any](svc *service.CRUDService[T], decode func(c *gin.Context) (*T, error)) *ResourceHandler[T] {
	return &ResourceHandler[T]{svc: svc, decode: decode}
}

// List handles GET / with page and limit query parameters. Pagination
// metadata travels in the Pagination response header.
func (h *ResourceHandler[T]) List(c *gin.Context) {
	params := constants.ParsePaginationParams(c)

	page, err := h.svc.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	constants.RespondPaginated(c, http.StatusOK, "Records retrieved", page.Records, constants.Pagination{
		Count:       page.Count,
		PageCount:   page.PageCount,
		PerPage:     page.PerPage,
		CurrentPage: page.CurrentPage,
	})
}

// GetByID handles GET /:id.
func (h *ResourceHandler[T]) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Record retrieved", record, nil)
}

// Create handles POST /.
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	record, err := h.decode(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), record)
	if err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusCreated, "Record created", created, nil)
}

// Update handles PATCH /:id with a partial column map.
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if err := c.ShouldBindJSON(&changes); err != nil {
		respondWithError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, changes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Record updated", updated, nil)
}

// Delete handles DELETE /:id. The id is echoed back even when the record was
// already gone.
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deletedID, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	constants.Respond(c, http.StatusOK, "Record deleted", gin.H{"id": deletedID}, nil)
}
