package communication

import (
	"ProjectTracker/internal/auth"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommunicationHandler struct {
	service *CommunicationService
}

func NewCommunicationHandler(service *CommunicationService) *CommunicationHandler {
	return &CommunicationHandler{service: service}
}

func (h *CommunicationHandler) SendMessage(c echo.Context) error {
	claims, ok := auth.CallerClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	m, err := h.service.SendMessage(c.Request().Context(), claims, req)
	if err != nil {
		if errors.Is(err, ErrReceiverNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *CommunicationHandler) Inbox(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	messages, err := h.service.Inbox(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if messages == nil {
		messages = []*Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *CommunicationHandler) Sent(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	messages, err := h.service.Sent(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if messages == nil {
		messages = []*Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *CommunicationHandler) MarkMessageRead(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid message id"})
	}
	m, err := h.service.MarkMessageRead(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Message not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CommunicationHandler) DeleteMessage(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid message id"})
	}
	if err := h.service.DeleteMessage(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Message not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Message deleted"})
}

func (h *CommunicationHandler) ListAnnouncements(c echo.Context) error {
	claims, ok := auth.CallerClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	announcements, err := h.service.ListAnnouncements(c.Request().Context(), claims.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if announcements == nil {
		announcements = []*Announcement{}
	}
	return c.JSON(http.StatusOK, announcements)
}

func (h *CommunicationHandler) CreateAnnouncement(c echo.Context) error {
	claims, ok := auth.CallerClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req CreateAnnouncementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	a, err := h.service.CreateAnnouncement(c.Request().Context(), claims, req)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *CommunicationHandler) DeactivateAnnouncement(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid announcement id"})
	}
	if err := h.service.DeactivateAnnouncement(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Announcement not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Announcement deactivated"})
}
