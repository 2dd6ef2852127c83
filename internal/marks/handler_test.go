package marks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ProjectTracker/internal/auth"
)

func assignRequest(t *testing.T, svc *MarksService, callerID primitive.ObjectID, req AssignMarksRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	e := echo.New()
	r := httptest.NewRequest(http.MethodPost, "/api/marks", bytes.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(r, rec)
	c.Set("user", &auth.JWTClaims{AccountID: callerID.Hex(), Name: "Dr. Sharma", Role: auth.RoleStaff})

	handler := NewMarksHandler(svc)
	require.NoError(t, handler.AssignMarks(c))
	return rec
}

func TestAssignMarksHandlerRejectsOverTotal(t *testing.T) {
	store := &memMarksStore{}
	svc := &MarksService{
		store:    store,
		notifier: &recordingNotifier{},
		logger:   zap.NewNop(),
		dispatch: func(fn func(ctx context.Context)) { fn(context.Background()) },
	}
	req := validRequest(primitive.NewObjectID(), primitive.NewObjectID())
	req.DocumentMarks = 16

	rec := assignRequest(t, svc, primitive.NewObjectID(), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "document_marks")
	assert.Empty(t, store.records)
}

func TestAssignMarksHandlerSuccess(t *testing.T) {
	store := &memMarksStore{}
	notifier := &recordingNotifier{}
	svc := &MarksService{
		store:    store,
		notifier: notifier,
		logger:   zap.NewNop(),
		dispatch: func(fn func(ctx context.Context)) { fn(context.Background()) },
	}
	evaluatorID := primitive.NewObjectID()

	rec := assignRequest(t, svc, evaluatorID, validRequest(primitive.NewObjectID(), primitive.NewObjectID()))

	assert.Equal(t, http.StatusOK, rec.Code)
	var saved ProjectMarks
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 32, saved.TotalMarks)
	assert.Equal(t, evaluatorID, saved.EvaluatedBy)
	assert.Equal(t, []int{32}, notifier.totals)
}
