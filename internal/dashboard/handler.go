package dashboard

import (
	"ProjectTracker/internal/auth"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the role-scoped aggregate views. The queries are
// plain parameterized reads; no caching or cursoring.
type DashboardHandler struct {
	repo *DashboardRepository
}

func NewDashboardHandler(repo *DashboardRepository) *DashboardHandler {
	return &DashboardHandler{repo: repo}
}

func (h *DashboardHandler) HOD(c echo.Context) error {
	ctx := c.Request().Context()

	statusCounts, err := h.repo.ProjectCountsByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	workloads, err := h.repo.GuideWorkloads(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	studentCount, err := h.repo.CountAccountsByRole(ctx, auth.RoleStudent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	staffCount, err := h.repo.CountAccountsByRole(ctx, auth.RoleStaff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	recent, err := h.repo.RecentProjects(ctx, 5)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"project_status_counts": statusCounts,
		"guide_workloads":       workloads,
		"student_count":         studentCount,
		"staff_count":           staffCount,
		"recent_projects":       recent,
	})
}

func (h *DashboardHandler) Staff(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	ctx := c.Request().Context()

	guided, err := h.repo.CountGuidedProjects(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	pendingReviews, err := h.repo.CountPendingReviews(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	unread, err := h.repo.CountUnreadNotifications(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"guided_projects":      guided,
		"pending_reviews":      pendingReviews,
		"unread_notifications": unread,
	})
}

func (h *DashboardHandler) Student(c echo.Context) error {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	ctx := c.Request().Context()

	project, err := h.repo.StudentProject(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	documents, err := h.repo.CountStudentDocuments(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	upcoming, err := h.repo.UpcomingMilestones(ctx, callerID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	unread, err := h.repo.CountUnreadNotifications(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"project":              project,
		"document_count":       documents,
		"upcoming_milestones":  upcoming,
		"unread_notifications": unread,
	})
}
