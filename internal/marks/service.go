package marks

import (
	"ProjectTracker/internal/notification"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type marksStore interface {
	Upsert(ctx context.Context, m *ProjectMarks) (*ProjectMarks, error)
	FindByStudentAndProject(ctx context.Context, studentID, projectID primitive.ObjectID) (*ProjectMarks, error)
	FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*ProjectMarks, error)
}

type notifier interface {
	NotifyMarksAssigned(ctx context.Context, projectID primitive.ObjectID, studentID primitive.ObjectID, total int) *notification.Notification
}

type MarksService struct {
	store    marksStore
	notifier notifier
	logger   *zap.Logger

	// dispatch runs a notification side effect detached from the request.
	dispatch func(fn func(ctx context.Context))
}

func NewMarksService(repo *MarksRepository, notifier *notification.NotificationService, logger *zap.Logger) *MarksService {
	return &MarksService{
		store:    repo,
		notifier: notifier,
		logger:   logger,
		dispatch: func(fn func(ctx context.Context)) { go fn(context.Background()) },
	}
}

// ValidateMarks checks every component against its cap and the recomputed
// total against 40.
func ValidateMarks(req AssignMarksRequest) (int, error) {
	checks := []struct {
		name  string
		value int
		max   int
	}{
		{"title_marks", req.TitleMarks, MaxTitleMarks},
		{"progress_marks", req.ProgressMarks, MaxProgressMarks},
		{"document_marks", req.DocumentMarks, MaxDocumentMarks},
		{"interaction_marks", req.InteractionMarks, MaxInteractionMarks},
		{"final_review_marks", req.FinalReviewMarks, MaxFinalReviewMarks},
	}
	total := 0
	for _, check := range checks {
		if check.value < 0 || check.value > check.max {
			return 0, fmt.Errorf("%s must be between 0 and %d", check.name, check.max)
		}
		total += check.value
	}
	if total > MaxTotalMarks {
		return 0, fmt.Errorf("total marks %d exceed the maximum of %d", total, MaxTotalMarks)
	}
	return total, nil
}

// AssignMarks validates, recomputes the total server-side and upserts the
// single evaluation record for the pair. Nothing is written on validation
// failure.
func (s *MarksService) AssignMarks(ctx context.Context, evaluatorID primitive.ObjectID, req AssignMarksRequest) (*ProjectMarks, error) {
	total, err := ValidateMarks(req)
	if err != nil {
		return nil, err
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("invalid student id")
	}
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id")
	}

	m := &ProjectMarks{
		StudentID:        studentID,
		ProjectID:        projectID,
		TitleMarks:       req.TitleMarks,
		ProgressMarks:    req.ProgressMarks,
		DocumentMarks:    req.DocumentMarks,
		InteractionMarks: req.InteractionMarks,
		FinalReviewMarks: req.FinalReviewMarks,
		TotalMarks:       total,
		Remarks:          req.Remarks,
		EvaluatedBy:      evaluatorID,
		EvaluatedAt:      time.Now().UTC(),
	}
	saved, err := s.store.Upsert(ctx, m)
	if err != nil {
		return nil, err
	}

	record := *saved
	s.dispatch(func(ctx context.Context) {
		s.notifier.NotifyMarksAssigned(ctx, record.ProjectID, record.StudentID, record.TotalMarks)
	})
	return saved, nil
}

func (s *MarksService) GetStudentMarks(ctx context.Context, studentID primitive.ObjectID) ([]*ProjectMarks, error) {
	return s.store.FindByStudent(ctx, studentID)
}

func (s *MarksService) GetMarks(ctx context.Context, studentID, projectID primitive.ObjectID) (*ProjectMarks, error) {
	return s.store.FindByStudentAndProject(ctx, studentID, projectID)
}
