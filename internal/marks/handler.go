package marks

import (
	"ProjectTracker/internal/auth"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MarksHandler struct {
	service *MarksService
}

func NewMarksHandler(service *MarksService) *MarksHandler {
	return &MarksHandler{service: service}
}

func (h *MarksHandler) AssignMarks(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req AssignMarksRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	m, err := h.service.AssignMarks(c.Request().Context(), callerID, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, m)
}

// MyMarks returns the authenticated student's evaluations.
func (h *MarksHandler) MyMarks(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	records, err := h.service.GetStudentMarks(c.Request().Context(), callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if records == nil {
		records = []*ProjectMarks{}
	}
	return c.JSON(http.StatusOK, records)
}

// ProjectMarks returns a student's evaluation for a project.
func (h *MarksHandler) ProjectMarks(c echo.Context) error {
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student id"})
	}
	projectID, err := primitive.ObjectIDFromHex(c.Param("projectId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
	}
	m, err := h.service.GetMarks(c.Request().Context(), studentID, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if m == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No marks assigned yet"})
	}
	return c.JSON(http.StatusOK, m)
}
