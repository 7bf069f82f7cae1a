package notif

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"taskchat/internal/common"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// NotificationReader is what the HTTP layer needs from the service.
type NotificationReader interface {
	GetUserNotifications(ctx context.Context, userID string, limit, offset int) ([]*common.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) error
}

type NotificationListResponse struct {
	Notifications []*common.NotificationResponse `json:"notifications"`
	UnreadCount   int64                          `json:"unreadCount"`
}

type NotificationHandler struct {
	service NotificationReader
}

func NewNotificationHandler(service NotificationReader) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

func (h *NotificationHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/notifications", h.GetUserNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationID}/read", h.MarkAsRead).Methods(http.MethodPut)
}

func (h *NotificationHandler) GetUserNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := h.service.GetUserNotifications(r.Context(), userID, limit, offset)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	unread, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}

	if err := h.service.MarkAsRead(r.Context(), mux.Vars(r)["notificationID"], userID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.MessageResponse{Message: "Notification marked as read"})
}
