package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"taskflow-project/taskflow-service/middleware"
	"taskflow-project/taskflow-service/notifications"
)

type NotificationHandler struct {
	service *notifications.NotificationService
}

func NewNotificationHandler(service *notifications.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, h.service.GetNotifications(claims.MemberID, unreadOnly, limit))
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": h.service.UnreadCount(claims.MemberID)})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !h.service.MarkRead(claims.MemberID, mux.Vars(r)["notificationID"]) {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	count := h.service.MarkAllRead(claims.MemberID)
	writeJSON(w, http.StatusOK, map[string]int{"marked": count})
}

func (h *NotificationHandler) ClearInbox(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	h.service.ClearInbox(claims.MemberID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Inbox cleared"})
}

func (h *NotificationHandler) GetEventLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var since *time.Time
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid since timestamp", http.StatusBadRequest)
			return
		}
		since = &t
	}
	limit := 100
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	events := h.service.GetEventLog(notifications.EventType(q.Get("eventType")), q.Get("actorId"), since, limit)
	writeJSON(w, http.StatusOK, events)
}
