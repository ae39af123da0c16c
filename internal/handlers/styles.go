package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paintsnap/internal/styles"
)

type styleResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AccentColor string `json:"accentColor"`
	Era         string `json:"era"`
}

func (h HandlerSet) ListStyles(c *gin.Context) {
	catalog := styles.All()
	items := make([]styleResponse, 0, len(catalog))
	for _, s := range catalog {
		items = append(items, styleResponse{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			AccentColor: s.AccentColor,
			Era:         s.Era,
		})
	}

	c.JSON(http.StatusOK, gin.H{"styles": items})
}
