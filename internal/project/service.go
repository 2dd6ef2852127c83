package project

import (
	"ProjectTracker/internal/auth"
	"ProjectTracker/internal/notification"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("not permitted")
	ErrProjectExists = errors.New("student already has a project")
)

type projectStore interface {
	CreateProject(ctx context.Context, p *Project) error
	FindProjectByID(ctx context.Context, id primitive.ObjectID) (*Project, error)
	FindProjectByStudent(ctx context.Context, studentID primitive.ObjectID) (*Project, error)
	ReplaceProject(ctx context.Context, p *Project) error
	ListProjects(ctx context.Context, filter bson.M) ([]*Project, error)
	ListByGuide(ctx context.Context, guideID primitive.ObjectID) ([]*Project, error)
	CreateDocument(ctx context.Context, d *Document) error
	FindDocumentByID(ctx context.Context, id primitive.ObjectID) (*Document, error)
	ReplaceDocument(ctx context.Context, d *Document) error
	ListDocumentsByProject(ctx context.Context, projectID primitive.ObjectID) ([]*Document, error)
	CreateMilestone(ctx context.Context, m *Milestone) error
	FindMilestoneByID(ctx context.Context, id primitive.ObjectID) (*Milestone, error)
	ReplaceMilestone(ctx context.Context, m *Milestone) error
	ListMilestonesByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*Milestone, error)
	CreateTeam(ctx context.Context, t *Team) error
	FindTeamByID(ctx context.Context, id primitive.ObjectID) (*Team, error)
	ListTeamsForMember(ctx context.Context, memberID primitive.ObjectID) ([]*Team, error)
}

type accountDirectory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.Account, error)
}

type notifier interface {
	NotifyProjectSubmission(ctx context.Context, projectID primitive.ObjectID, projectTitle string, guideID primitive.ObjectID, studentName string) *notification.Notification
	NotifyProjectApproval(ctx context.Context, projectID primitive.ObjectID, projectTitle string, studentID primitive.ObjectID, approvedBy string) *notification.Notification
	NotifyProjectRejection(ctx context.Context, projectID primitive.ObjectID, projectTitle string, studentID primitive.ObjectID, rejectedBy, remarks string) *notification.Notification
	NotifyGuideAssignment(ctx context.Context, projectID primitive.ObjectID, projectTitle string, studentID, guideID primitive.ObjectID, guideName string) []*notification.Notification
	NotifyDocumentSubmission(ctx context.Context, documentID primitive.ObjectID, docTitle, projectTitle string, guideID primitive.ObjectID, guideEmail, studentName string) *notification.Notification
	NotifyDocumentReview(ctx context.Context, documentID primitive.ObjectID, docTitle string, studentID primitive.ObjectID, reviewerName, status string) *notification.Notification
	NotifyMilestoneAssignment(ctx context.Context, milestoneID primitive.ObjectID, title string, studentID primitive.ObjectID, dueDate time.Time) *notification.Notification
	NotifyTeamCreation(ctx context.Context, teamID primitive.ObjectID, teamName string, memberIDs []primitive.ObjectID) []*notification.Notification
}

// ProjectService owns the project workflow: draft, submission, the guide's
// approve/reject decision, documents, milestones and teams. Each mutation
// fires its notification best-effort on a separate goroutine; notification
// failure never fails the request.
type ProjectService struct {
	store    projectStore
	accounts accountDirectory
	notifier notifier
	logger   *zap.Logger

	// dispatch runs a notification side effect detached from the request.
	dispatch func(fn func(ctx context.Context))
}

func NewProjectService(repo *ProjectRepository, accounts *auth.AccountRepository, notifier *notification.NotificationService, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		store:    repo,
		accounts: accounts,
		notifier: notifier,
		logger:   logger,
		dispatch: func(fn func(ctx context.Context)) { go fn(context.Background()) },
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, studentID primitive.ObjectID, req CreateProjectRequest) (*Project, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	now := time.Now().UTC()
	p := &Project{
		ID:             primitive.NewObjectID(),
		Title:          req.Title,
		Description:    req.Description,
		StudentID:      studentID,
		Status:         StatusDraft,
		ApprovalStatus: ApprovalPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) SubmitProject(ctx context.Context, studentID, projectID primitive.ObjectID) (*Project, error) {
	p, err := s.store.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.StudentID != studentID {
		return nil, ErrForbidden
	}
	if p.Status != StatusDraft && p.Status != StatusRejected {
		return nil, fmt.Errorf("project cannot be submitted from status %s", p.Status)
	}

	now := time.Now().UTC()
	p.Status = StatusSubmitted
	p.ApprovalStatus = ApprovalPending
	p.SubmittedAt = &now
	p.UpdatedAt = now
	if err := s.store.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}

	student, err := s.accounts.FindByID(ctx, studentID)
	if err != nil || student == nil {
		s.logger.Sugar().Errorf("failed to load student %s for submission notification: %v", studentID.Hex(), err)
		return p, nil
	}
	proj := *p
	s.dispatch(func(ctx context.Context) {
		s.notifier.NotifyProjectSubmission(ctx, proj.ID, proj.Title, proj.GuideID, student.Name)
	})
	return p, nil
}

// decide applies the guide's approve/reject decision. Only the assigned
// guide may decide; the workflow status and approval status move together.
func (s *ProjectService) decide(ctx context.Context, guideID primitive.ObjectID, guideName string, projectID primitive.ObjectID, approve bool, remarks string) (*Project, error) {
	p, err := s.store.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.GuideID != guideID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	if approve {
		p.Status = StatusApproved
		p.ApprovalStatus = ApprovalApproved
	} else {
		p.Status = StatusRejected
		p.ApprovalStatus = ApprovalRejected
	}
	p.Remarks = remarks
	p.DecidedAt = &now
	p.UpdatedAt = now
	if err := s.store.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}

	proj := *p
	s.dispatch(func(ctx context.Context) {
		if approve {
			s.notifier.NotifyProjectApproval(ctx, proj.ID, proj.Title, proj.StudentID, guideName)
		} else {
			s.notifier.NotifyProjectRejection(ctx, proj.ID, proj.Title, proj.StudentID, guideName, remarks)
		}
	})
	return p, nil
}

func (s *ProjectService) ApproveProject(ctx context.Context, guideID primitive.ObjectID, guideName string, projectID primitive.ObjectID, remarks string) (*Project, error) {
	return s.decide(ctx, guideID, guideName, projectID, true, remarks)
}

func (s *ProjectService) RejectProject(ctx context.Context, guideID primitive.ObjectID, guideName string, projectID primitive.ObjectID, remarks string) (*Project, error) {
	return s.decide(ctx, guideID, guideName, projectID, false, remarks)
}

func (s *ProjectService) AssignGuide(ctx context.Context, projectID, guideID primitive.ObjectID) (*Project, error) {
	p, err := s.store.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	guide, err := s.accounts.FindByID(ctx, guideID)
	if err != nil {
		return nil, err
	}
	if guide == nil || guide.Role != auth.RoleStaff {
		return nil, fmt.Errorf("guide must be an existing staff account")
	}

	p.GuideID = guideID
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}

	proj := *p
	s.dispatch(func(ctx context.Context) {
		s.notifier.NotifyGuideAssignment(ctx, proj.ID, proj.Title, proj.StudentID, guide.ID, guide.Name)
	})
	return p, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	return s.store.FindProjectByID(ctx, id)
}

func (s *ProjectService) GetStudentProject(ctx context.Context, studentID primitive.ObjectID) (*Project, error) {
	return s.store.FindProjectByStudent(ctx, studentID)
}

func (s *ProjectService) ListAllProjects(ctx context.Context) ([]*Project, error) {
	return s.store.ListProjects(ctx, bson.M{})
}

func (s *ProjectService) ListGuideProjects(ctx context.Context, guideID primitive.ObjectID) ([]*Project, error) {
	return s.store.ListByGuide(ctx, guideID)
}

// UploadDocument records document metadata for the student's project and
// notifies the guide, with a best-effort email on top.
func (s *ProjectService) UploadDocument(ctx context.Context, studentID primitive.ObjectID, req UploadDocumentRequest) (*Document, error) {
	if req.Title == "" || req.FileName == "" {
		return nil, fmt.Errorf("title and file name are required")
	}
	p, err := s.store.FindProjectByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	d := &Document{
		ID:           primitive.NewObjectID(),
		ProjectID:    p.ID,
		StudentID:    studentID,
		Title:        req.Title,
		FileName:     req.FileName,
		FilePath:     req.FilePath,
		FileSize:     req.FileSize,
		ReviewStatus: ReviewPending,
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateDocument(ctx, d); err != nil {
		return nil, err
	}

	if !p.GuideID.IsZero() {
		student, _ := s.accounts.FindByID(ctx, studentID)
		guide, _ := s.accounts.FindByID(ctx, p.GuideID)
		studentName := ""
		if student != nil {
			studentName = student.Name
		}
		guideEmail := ""
		if guide != nil {
			guideEmail = guide.Email
		}
		doc, proj := *d, *p
		s.dispatch(func(ctx context.Context) {
			s.notifier.NotifyDocumentSubmission(ctx, doc.ID, doc.Title, proj.Title, proj.GuideID, guideEmail, studentName)
		})
	}
	return d, nil
}

// ReviewDocument applies the guide's review. Only the guide assigned to the
// document's parent project may review it.
func (s *ProjectService) ReviewDocument(ctx context.Context, reviewerID primitive.ObjectID, reviewerName string, documentID primitive.ObjectID, req ReviewDocumentRequest) (*Document, error) {
	switch req.Status {
	case ReviewApproved, ReviewRejected, ReviewNeedsRevision:
	default:
		return nil, fmt.Errorf("invalid review status %q", req.Status)
	}

	d, err := s.store.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	p, err := s.store.FindProjectByID(ctx, d.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.GuideID != reviewerID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	d.ReviewStatus = req.Status
	d.ReviewComments = req.Comments
	d.ReviewedBy = reviewerID
	d.ReviewedAt = &now
	if err := s.store.ReplaceDocument(ctx, d); err != nil {
		return nil, err
	}

	doc := *d
	s.dispatch(func(ctx context.Context) {
		s.notifier.NotifyDocumentReview(ctx, doc.ID, doc.Title, doc.StudentID, reviewerName, doc.ReviewStatus)
	})
	return d, nil
}

func (s *ProjectService) ListProjectDocuments(ctx context.Context, projectID primitive.ObjectID) ([]*Document, error) {
	return s.store.ListDocumentsByProject(ctx, projectID)
}

func (s *ProjectService) CreateMilestone(ctx context.Context, creatorID primitive.ObjectID, req CreateMilestoneRequest) (*Milestone, error) {
	if req.Title == "" || req.DueDate.IsZero() {
		return nil, fmt.Errorf("title and due date are required")
	}
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id")
	}
	p, err := s.store.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	m := &Milestone{
		ID:          primitive.NewObjectID(),
		ProjectID:   p.ID,
		StudentID:   p.StudentID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.UTC(),
		Status:      MilestonePending,
		CreatedBy:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateMilestone(ctx, m); err != nil {
		return nil, err
	}

	ms := *m
	s.dispatch(func(ctx context.Context) {
		s.notifier.NotifyMilestoneAssignment(ctx, ms.ID, ms.Title, ms.StudentID, ms.DueDate)
	})
	return m, nil
}

func (s *ProjectService) UpdateMilestoneStatus(ctx context.Context, callerID, milestoneID primitive.ObjectID, status string) (*Milestone, error) {
	switch status {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted:
	default:
		return nil, fmt.Errorf("invalid milestone status %q", status)
	}
	m, err := s.store.FindMilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	if m.StudentID != callerID && m.CreatedBy != callerID {
		return nil, ErrForbidden
	}

	m.Status = status
	if status == MilestoneCompleted {
		now := time.Now().UTC()
		m.CompletedAt = &now
	} else {
		m.CompletedAt = nil
	}
	if err := s.store.ReplaceMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *ProjectService) ListStudentMilestones(ctx context.Context, studentID primitive.ObjectID) ([]*Milestone, error) {
	return s.store.ListMilestonesByStudent(ctx, studentID)
}

// CreateTeam creates the team and fans a notification out to every member.
func (s *ProjectService) CreateTeam(ctx context.Context, creatorID primitive.ObjectID, req CreateTeamRequest) (*Team, error) {
	if req.Name == "" || len(req.MemberIDs) == 0 {
		return nil, fmt.Errorf("name and members are required")
	}
	memberIDs := make([]primitive.ObjectID, 0, len(req.MemberIDs))
	for _, hex := range req.MemberIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid member id %q", hex)
		}
		memberIDs = append(memberIDs, id)
	}

	t := &Team{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		MemberIDs: memberIDs,
		CreatedBy: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	if req.ProjectID != "" {
		projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid project id")
		}
		t.ProjectID = projectID
	}
	if err := s.store.CreateTeam(ctx, t); err != nil {
		return nil, err
	}

	team := *t
	s.dispatch(func(ctx context.Context) {
		s.notifier.NotifyTeamCreation(ctx, team.ID, team.Name, team.MemberIDs)
	})
	return t, nil
}

// GetTeam returns one team; only its members, its creator or its guide may
// see it.
func (s *ProjectService) GetTeam(ctx context.Context, callerID, teamID primitive.ObjectID) (*Team, error) {
	t, err := s.store.FindTeamByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.CreatedBy != callerID && t.GuideID != callerID {
		member := false
		for _, id := range t.MemberIDs {
			if id == callerID {
				member = true
				break
			}
		}
		if !member {
			return nil, ErrForbidden
		}
	}
	return t, nil
}

func (s *ProjectService) ListMyTeams(ctx context.Context, memberID primitive.ObjectID) ([]*Team, error) {
	return s.store.ListTeamsForMember(ctx, memberID)
}
