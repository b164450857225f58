package notification

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"divvy/pkg/response"
)

// Handler handles HTTP requests for notification operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/member/{memberId}", h.ListByMember)
	r.Get("/member/{memberId}/unread-count", h.UnreadCount)
	r.Post("/member/{memberId}/read-all", h.MarkAllAsRead)
	r.Post("/{id}/read", h.MarkAsRead)

	return r
}

// ListByMember handles GET /notifications/member/{memberId}
// @Summary      List notifications for a member
// @Tags         notifications
// @Produce      json
// @Param        memberId path string true "Member ID"
// @Param        unread_only query bool false "Only unread notifications"
// @Success      200 {object} response.APIResponse{data=[]Notification}
// @Router       /notifications/member/{memberId} [get]
func (h *Handler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberId")
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	notifications, err := h.service.ListByMember(r.Context(), memberID, unreadOnly)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	response.JSON(w, http.StatusOK, notifications)
}

// UnreadCount handles GET /notifications/member/{memberId}/unread-count
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Param        memberId path string true "Member ID"
// @Success      200 {object} response.APIResponse
// @Router       /notifications/member/{memberId}/unread-count [get]
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountUnread(r.Context(), chi.URLParam(r, "memberId"))
	if err != nil {
		response.InternalError(w, "Failed to count notifications")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkAsRead handles POST /notifications/{id}/read
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	err := h.service.MarkAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark notification as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"read": true})
}

// MarkAllAsRead handles POST /notifications/member/{memberId}/read-all
// @Summary      Mark all of a member's notifications as read
// @Tags         notifications
// @Produce      json
// @Param        memberId path string true "Member ID"
// @Success      200 {object} response.APIResponse
// @Router       /notifications/member/{memberId}/read-all [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllAsRead(r.Context(), chi.URLParam(r, "memberId")); err != nil {
		response.InternalError(w, "Failed to mark notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"read": true})
}
