package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintsnap/internal/service"
)

type uploadResponse struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"sizeBytes"`
}

func (h HandlerSet) UploadPhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.Request.Context(), service.UploadInput{
		UserID: user.ID,
		File:   file,
		Header: header,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("photo upload failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo": uploadResponse{
		URL:       result.URL,
		Format:    result.Format,
		SizeBytes: result.SizeBytes,
	}})
}
