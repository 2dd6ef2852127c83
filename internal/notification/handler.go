package notification

import (
	"ProjectTracker/internal/auth"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler exposes a user's own notifications over HTTP.
type NotificationHandler struct {
	repo     *NotificationRepository
	resolver *RefResolver
	sweep    *SweepService
}

func NewNotificationHandler(repo *NotificationRepository, resolver *RefResolver, sweep *SweepService) *NotificationHandler {
	return &NotificationHandler{repo: repo, resolver: resolver, sweep: sweep}
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	notifications, err := h.repo.ListForUser(c.Request().Context(), userID, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if notifications == nil {
		notifications = []*Notification{}
	}
	if c.QueryParam("resolve") == "true" {
		HydrateRelated(c.Request().Context(), h.resolver, notifications)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	count, err := h.repo.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread": count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notification id"})
	}
	n, err := h.repo.MarkRead(c.Request().Context(), id, userID)
	if err != nil {
		if err == ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	count, err := h.repo.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked": count})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notification id"})
	}
	if err := h.repo.Delete(c.Request().Context(), id, userID); err != nil {
		if err == ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification deleted"})
}

func (h *NotificationHandler) ClearRead(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	count, err := h.repo.ClearRead(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int64{"cleared": count})
}

// RunSweep triggers the reminder sweep on demand (HOD only, guarded by the
// route policy). The daily schedule calls the same code path.
func (h *NotificationHandler) RunSweep(c echo.Context) error {
	go h.sweep.Run(context.Background())
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Sweep started"})
}
