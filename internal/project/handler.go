package project

import (
	"ProjectTracker/internal/auth"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectHandler struct {
	service *ProjectService
}

func NewProjectHandler(service *ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// writeErr maps service errors onto the HTTP taxonomy: validation 400,
// ownership 403, unknown ids 404, duplicates 409, anything else 500.
func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrProjectExists):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func pathID(c echo.Context) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Param("id"))
}

func (h *ProjectHandler) Create(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	p, err := h.service.CreateProject(c.Request().Context(), callerID, req)
	if err != nil {
		if errors.Is(err, ErrProjectExists) {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) Submit(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
	}
	p, err := h.service.SubmitProject(c.Request().Context(), callerID, id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Approve(c echo.Context) error {
	return h.decide(c, true)
}

func (h *ProjectHandler) Reject(c echo.Context) error {
	return h.decide(c, false)
}

func (h *ProjectHandler) decide(c echo.Context, approve bool) error {
	claims, ok := auth.CallerClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	callerID, _ := primitive.ObjectIDFromHex(claims.AccountID)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
	}
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	var p *Project
	if approve {
		p, err = h.service.ApproveProject(c.Request().Context(), callerID, claims.Name, id, req.Remarks)
	} else {
		p, err = h.service.RejectProject(c.Request().Context(), callerID, claims.Name, id, req.Remarks)
	}
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) AssignGuide(c echo.Context) error {
	var req AssignGuideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
	}
	guideID, err := primitive.ObjectIDFromHex(req.GuideID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid guide id"})
	}
	p, err := h.service.AssignGuide(c.Request().Context(), projectID, guideID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Mine(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	p, err := h.service.GetStudentProject(c.Request().Context(), callerID)
	if err != nil {
		return writeErr(c, err)
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No project yet"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) ListAll(c echo.Context) error {
	projects, err := h.service.ListAllProjects(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) ListGuided(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	projects, err := h.service.ListGuideProjects(c.Request().Context(), callerID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) UploadDocument(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req UploadDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	d, err := h.service.UploadDocument(c.Request().Context(), callerID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *ProjectHandler) ReviewDocument(c echo.Context) error {
	claims, ok := auth.CallerClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	callerID, _ := primitive.ObjectIDFromHex(claims.AccountID)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid document id"})
	}
	var req ReviewDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	d, err := h.service.ReviewDocument(c.Request().Context(), callerID, claims.Name, id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ProjectHandler) ListDocuments(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
	}
	documents, err := h.service.ListProjectDocuments(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, documents)
}

func (h *ProjectHandler) CreateMilestone(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req CreateMilestoneRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	m, err := h.service.CreateMilestone(c.Request().Context(), callerID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *ProjectHandler) UpdateMilestoneStatus(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid milestone id"})
	}
	var req UpdateMilestoneStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	m, err := h.service.UpdateMilestoneStatus(c.Request().Context(), callerID, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, m)
}

func (h *ProjectHandler) ListMilestones(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	milestones, err := h.service.ListStudentMilestones(c.Request().Context(), callerID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, milestones)
}

func (h *ProjectHandler) CreateTeam(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	t, err := h.service.CreateTeam(c.Request().Context(), callerID, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *ProjectHandler) Team(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid team id"})
	}
	t, err := h.service.GetTeam(c.Request().Context(), callerID, id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *ProjectHandler) MyTeams(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	teams, err := h.service.ListMyTeams(c.Request().Context(), callerID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, teams)
}
