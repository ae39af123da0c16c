package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintsnap/internal/models"
)

type userResponse struct {
	ID                   string  `json:"id"`
	Email                string  `json:"email"`
	Credits              int     `json:"credits"`
	GenerationsRemaining int     `json:"generationsRemaining"`
	TotalTransformations int     `json:"totalTransformations"`
	FavoriteArtist       *string `json:"favoriteArtist"`
	Premium              bool    `json:"premium"`
	CanTransform         bool    `json:"canTransform"`
	Role                 string  `json:"role"`
	Status               string  `json:"status"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:                   user.ID,
		Email:                user.Email,
		Credits:              user.Credits,
		GenerationsRemaining: user.GenerationsRemaining,
		TotalTransformations: user.TotalTransformations,
		FavoriteArtist:       user.FavoriteArtist,
		Premium:              user.Premium,
		CanTransform:         user.CanTransform(),
		Role:                 string(user.Role),
		Status:               string(user.Status),
	}
}

func (h HandlerSet) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// Re-read so the response reflects grants landed since the token
	// check loaded the row.
	fresh, err := h.profiles.Load(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(fresh)})
}

type updateProfileRequest struct {
	FavoriteArtist *string `json:"favoriteArtist"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.profiles.SetFavoriteArtist(c.Request.Context(), user.ID, req.FavoriteArtist)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(updated)})
}
