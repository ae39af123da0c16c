package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) AdminListTransformations(c *gin.Context) {
	limit, offset := pagination(c)

	items, err := h.transforms.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]map[string]interface{}, 0, len(items))
	for _, t := range items {
		resp = append(resp, map[string]interface{}{
			"id":        t.ID,
			"userId":    t.UserID,
			"style":     t.Style,
			"status":    t.Status,
			"synthetic": t.Synthetic(),
			"createdAt": t.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": resp})
}
