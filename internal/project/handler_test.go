package project

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ProjectTracker/internal/auth"
)

func decisionRequest(t *testing.T, h *ProjectHandler, approve bool, projectID primitive.ObjectID, claims *auth.JWTClaims, remarks string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(DecisionRequest{Remarks: remarks})
	require.NoError(t, err)

	path := "/api/projects/" + projectID.Hex() + "/approve"
	if !approve {
		path = "/api/projects/" + projectID.Hex() + "/reject"
	}
	e := echo.New()
	r := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(r, rec)
	c.SetParamNames("id")
	c.SetParamValues(projectID.Hex())
	c.Set("user", claims)

	if approve {
		require.NoError(t, h.Approve(c))
	} else {
		require.NoError(t, h.Reject(c))
	}
	return rec
}

func TestApproveHandlerHappyPath(t *testing.T) {
	store := &memProjectStore{}
	studentID := primitive.NewObjectID()
	guideID := primitive.NewObjectID()
	p := seedProject(store, studentID, guideID, StatusSubmitted)
	notifier := &recordingNotifier{}
	svc := newTestProjectService(store, nil, notifier)
	h := NewProjectHandler(svc)
	claims := &auth.JWTClaims{AccountID: guideID.Hex(), Name: "Dr. Sharma", Role: auth.RoleStaff}

	rec := decisionRequest(t, h, true, p.ID, claims, "Good scope")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Equal(t, ApprovalApproved, resp.ApprovalStatus)
	require.NotNil(t, resp.DecidedAt)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "approval", notifier.calls[0].event)
	assert.Equal(t, studentID, notifier.calls[0].userID)
	assert.Equal(t, "Dr. Sharma", notifier.calls[0].detail)
}

func TestApproveHandlerForeignGuideGets403(t *testing.T) {
	store := &memProjectStore{}
	p := seedProject(store, primitive.NewObjectID(), primitive.NewObjectID(), StatusSubmitted)
	svc := newTestProjectService(store, nil, &recordingNotifier{})
	h := NewProjectHandler(svc)
	claims := &auth.JWTClaims{AccountID: primitive.NewObjectID().Hex(), Name: "Dr. Intruder", Role: auth.RoleStaff}

	rec := decisionRequest(t, h, true, p.ID, claims, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRejectHandlerUnknownProjectGets404(t *testing.T) {
	svc := newTestProjectService(&memProjectStore{}, nil, &recordingNotifier{})
	h := NewProjectHandler(svc)
	claims := &auth.JWTClaims{AccountID: primitive.NewObjectID().Hex(), Name: "Dr. Sharma", Role: auth.RoleStaff}

	rec := decisionRequest(t, h, false, primitive.NewObjectID(), claims, "No such project")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateHandlerDuplicateProjectGets409(t *testing.T) {
	store := &memProjectStore{}
	studentID := primitive.NewObjectID()
	seedProject(store, studentID, primitive.NilObjectID, StatusDraft)
	svc := newTestProjectService(store, nil, &recordingNotifier{})
	h := NewProjectHandler(svc)

	body, err := json.Marshal(CreateProjectRequest{Title: "Second Project"})
	require.NoError(t, err)
	e := echo.New()
	r := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(r, rec)
	c.Set("user", &auth.JWTClaims{AccountID: studentID.Hex(), Name: "Raj", Role: auth.RoleStudent})

	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
