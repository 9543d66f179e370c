package transport

import (
	"net/http"
	"time"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/middleware"
	"corralon-jr/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NotificationResponse represents one feed entry
type NotificationResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
}

func toNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Text:      n.Text,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		Read:      n.Read,
	}
}

// NotificationHandler handles HTTP requests for the notification feed
type NotificationHandler struct {
	feed   *service.NotificationFeed
	logger *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(feed *service.NotificationFeed, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{feed: feed, logger: logger}
}

// RegisterRoutes registers all notification routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/unread-count", h.UnreadCount)
	})
}

// List returns the caller's feed, newest first. Fetching the feed marks
// every entry as read, mirroring the notification drawer.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notifications := h.feed.List(userID, true)

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, toNotificationResponse(n))
	}

	middleware.RespondWithJSON(w, http.StatusOK, responses)
}

// UnreadCount returns the badge count without marking anything read
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]int{"unread": h.feed.UnreadCount(userID)})
}
