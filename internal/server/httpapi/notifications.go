package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type notificationPayload struct {
	ID               int64  `json:"id"`
	NotificationType string `json:"notification_type"`
	Message          string `json:"message"`
	CreatedAt        string `json:"created_at"`
}

// listNotifications returns the caller's notification audit trail, newest
// first.
func (s *Server) listNotifications(c *gin.Context) {
	items, err := s.notifications.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]notificationPayload, 0, len(items))
	for _, n := range items {
		out = append(out, notificationPayload{
			ID:               n.ID,
			NotificationType: n.Type,
			Message:          n.Message,
			CreatedAt:        n.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, out)
}
