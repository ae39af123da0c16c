package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"paintsnap/internal/models"
	"paintsnap/internal/repository"
	"paintsnap/internal/service"
)

type transformationResponse struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"sourceUrl"`
	ResultURL *string   `json:"resultUrl"`
	Style     string    `json:"style"`
	Status    string    `json:"status"`
	Synthetic bool      `json:"synthetic"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTransformationResponse(t models.Transformation) transformationResponse {
	return transformationResponse{
		ID:        t.ID,
		SourceURL: t.SourceURL,
		ResultURL: t.ResultURL,
		Style:     t.Style,
		Status:    string(t.Status),
		Synthetic: t.Synthetic(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type submitTransformationRequest struct {
	SourceURL string `json:"sourceUrl" binding:"required,url"`
	Style     string `json:"style" binding:"required"`
}

func (h HandlerSet) SubmitTransformation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req submitTransformationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.transforms.Submit(c.Request.Context(), service.SubmitInput{
		UserID:    user.ID,
		SourceURL: req.SourceURL,
		StyleID:   req.Style,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoGenerations):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "no_generations_remaining"})
		case errors.Is(err, service.ErrUnknownStyle):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_style"})
		default:
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("submit transformation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"transformation": newTransformationResponse(t)})
}

func (h HandlerSet) ListTransformations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	items, err := h.transforms.ListForUser(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]transformationResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, newTransformationResponse(t))
	}

	c.JSON(http.StatusOK, gin.H{"transformations": resp})
}

func (h HandlerSet) GetTransformation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	t, err := h.transforms.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransformationNotFound), errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusNotFound, gin.H{"error": "transformation_not_found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transformation": newTransformationResponse(t)})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}
