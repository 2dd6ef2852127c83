package notification

import (
	"ProjectTracker/internal/auth"
	"ProjectTracker/internal/config"
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Row shapes for the cross-collection queries the sweep needs. The sweep
// reads milestones, documents, projects, accounts and announcements directly;
// only the fields it touches are decoded.
type MilestoneDue struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProjectID primitive.ObjectID `bson:"project_id"`
	StudentID primitive.ObjectID `bson:"student_id"`
	Title     string             `bson:"title"`
	DueDate   time.Time          `bson:"due_date"`
	Status    string             `bson:"status"`
}

type PendingDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	ProjectID  primitive.ObjectID `bson:"project_id"`
	Title      string             `bson:"title"`
	UploadedAt time.Time          `bson:"uploaded_at"`
}

type GuideContact struct {
	ID    primitive.ObjectID
	Name  string
	Email string
}

type AnnouncementDue struct {
	ID             primitive.ObjectID `bson:"_id"`
	Title          string             `bson:"title"`
	Deadline       time.Time          `bson:"deadline"`
	TargetAudience string             `bson:"target_audience"`
}

// SweepRepository bundles the read-side queries of the reminder sweep.
type SweepRepository struct {
	milestones    *mongo.Collection
	documents     *mongo.Collection
	projects      *mongo.Collection
	accounts      *mongo.Collection
	announcements *mongo.Collection
}

func NewSweepRepository(db *mongo.Database) *SweepRepository {
	return &SweepRepository{
		milestones:    db.Collection("milestones"),
		documents:     db.Collection("documents"),
		projects:      db.Collection("projects"),
		accounts:      db.Collection("accounts"),
		announcements: db.Collection("announcements"),
	}
}

// MilestonesDueBetween returns milestones not yet completed whose due date
// falls in [from, to).
func (r *SweepRepository) MilestonesDueBetween(ctx context.Context, from, to time.Time) ([]*MilestoneDue, error) {
	filter := bson.M{
		"due_date": bson.M{"$gte": from, "$lt": to},
		"status":   bson.M{"$ne": "Completed"},
	}
	cursor, err := r.milestones.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var milestones []*MilestoneDue
	if err := cursor.All(ctx, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

// DocumentsPendingSince returns documents still pending review that were
// uploaded at or before the cutoff.
func (r *SweepRepository) DocumentsPendingSince(ctx context.Context, cutoff time.Time) ([]*PendingDocument, error) {
	filter := bson.M{
		"review_status": "Pending",
		"uploaded_at":   bson.M{"$lte": cutoff},
	}
	cursor, err := r.documents.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var documents []*PendingDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}
	return documents, nil
}

// GuideForProject resolves a project's assigned guide contact, nil when the
// project has no guide.
func (r *SweepRepository) GuideForProject(ctx context.Context, projectID primitive.ObjectID) (*GuideContact, error) {
	var project struct {
		GuideID primitive.ObjectID `bson:"guide_id"`
	}
	err := r.projects.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	if project.GuideID.IsZero() {
		return nil, nil
	}
	var account struct {
		ID    primitive.ObjectID `bson:"_id"`
		Name  string             `bson:"name"`
		Email string             `bson:"email"`
	}
	err = r.accounts.FindOne(ctx, bson.M{"_id": project.GuideID}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &GuideContact{ID: account.ID, Name: account.Name, Email: account.Email}, nil
}

// AnnouncementsDueBetween returns active announcements with a deadline in
// [from, to).
func (r *SweepRepository) AnnouncementsDueBetween(ctx context.Context, from, to time.Time) ([]*AnnouncementDue, error) {
	filter := bson.M{
		"is_active": true,
		"deadline":  bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := r.announcements.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var announcements []*AnnouncementDue
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

// AudienceIDs resolves an announcement audience to active account ids.
func (r *SweepRepository) AudienceIDs(ctx context.Context, targetAudience string) ([]primitive.ObjectID, error) {
	var roles []string
	switch targetAudience {
	case "Students":
		roles = []string{auth.RoleStudent}
	case "Staff":
		roles = []string{auth.RoleStaff}
	default:
		roles = []string{auth.RoleStudent, auth.RoleStaff}
	}
	filter := bson.M{"role": bson.M{"$in": roles}, "is_active": true}
	cursor, err := r.accounts.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

type sweepStore interface {
	MilestonesDueBetween(ctx context.Context, from, to time.Time) ([]*MilestoneDue, error)
	DocumentsPendingSince(ctx context.Context, cutoff time.Time) ([]*PendingDocument, error)
	GuideForProject(ctx context.Context, projectID primitive.ObjectID) (*GuideContact, error)
	AnnouncementsDueBetween(ctx context.Context, from, to time.Time) ([]*AnnouncementDue, error)
	AudienceIDs(ctx context.Context, targetAudience string) ([]primitive.ObjectID, error)
}

type sweepNotifier interface {
	NotifyMilestoneDueSoon(ctx context.Context, milestoneID primitive.ObjectID, title string, studentID primitive.ObjectID, dueDate time.Time) *Notification
	NotifyDeadlineReminder(ctx context.Context, announcementID primitive.ObjectID, title string, deadline time.Time, recipientIDs []primitive.ObjectID) []*Notification
}

// SweepService is the daily reminder batch: milestones due tomorrow, stale
// document reviews and announcement deadlines. Failures are logged and the
// sweep moves on; nothing here may take the process down.
type SweepService struct {
	store    sweepStore
	notifier sweepNotifier
	email    emailSender
	logger   *zap.Logger

	mu sync.Mutex
}

func NewSweepService(repo *SweepRepository, notifier *NotificationService, emailService *config.EmailService, logger *zap.Logger) *SweepService {
	return &SweepService{store: repo, notifier: notifier, email: emailService, logger: logger}
}

// TomorrowWindow computes the UTC day boundaries [midnight tomorrow,
// midnight day-after) for a reference time.
func TomorrowWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return start, start.AddDate(0, 0, 1)
}

// StalenessBucket classifies a pending document's age at sweep time. The two
// overlapping checks of the old implementation are collapsed into one tiered
// rule so a document gets at most one reminder email per sweep.
func StalenessBucket(uploadedAt, now time.Time) string {
	age := now.Sub(uploadedAt)
	switch {
	case age >= 72*time.Hour:
		return "escalation"
	case age >= 24*time.Hour:
		return "reminder"
	default:
		return ""
	}
}

// Run executes one sweep. A run already in progress makes this a no-op; the
// scheduler never overlaps two sweeps.
func (s *SweepService) Run(ctx context.Context) {
	if !s.mu.TryLock() {
		s.logger.Info("reminder sweep already running, skipping")
		return
	}
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.remindDueMilestones(ctx, now)
	s.remindStaleDocuments(ctx, now)
	s.remindAnnouncementDeadlines(ctx, now)
}

func (s *SweepService) remindDueMilestones(ctx context.Context, now time.Time) {
	from, to := TomorrowWindow(now)
	milestones, err := s.store.MilestonesDueBetween(ctx, from, to)
	if err != nil {
		s.logger.Sugar().Errorf("sweep: failed to query due milestones: %s", err.Error())
		return
	}
	for _, m := range milestones {
		s.notifier.NotifyMilestoneDueSoon(ctx, m.ID, m.Title, m.StudentID, m.DueDate)
	}
	s.logger.Sugar().Infof("sweep: processed %d milestone(s) due between %s and %s", len(milestones), from.Format(time.RFC3339), to.Format(time.RFC3339))
}

func (s *SweepService) remindStaleDocuments(ctx context.Context, now time.Time) {
	cutoff := now.Add(-24 * time.Hour)
	documents, err := s.store.DocumentsPendingSince(ctx, cutoff)
	if err != nil {
		s.logger.Sugar().Errorf("sweep: failed to query pending documents: %s", err.Error())
		return
	}
	for _, d := range documents {
		guide, err := s.store.GuideForProject(ctx, d.ProjectID)
		if err != nil {
			s.logger.Sugar().Errorf("sweep: failed to resolve guide for project %s: %s", d.ProjectID.Hex(), err.Error())
			continue
		}
		if guide == nil || guide.Email == "" {
			continue
		}

		var subject, body string
		switch StalenessBucket(d.UploadedAt, now) {
		case "escalation":
			subject = "Overdue review: " + d.Title
			body = fmt.Sprintf("The document %q has been awaiting review for more than 3 days (uploaded %s). Please review it as soon as possible.", d.Title, d.UploadedAt.Format("02 Jan 2006"))
		case "reminder":
			subject = "Pending review: " + d.Title
			body = fmt.Sprintf("The document %q is still awaiting your review (uploaded %s).", d.Title, d.UploadedAt.Format("02 Jan 2006"))
		default:
			continue
		}
		if err := s.email.SendEmail(guide.Email, subject, body); err != nil {
			s.logger.Sugar().Errorf("sweep: failed to email guide %s about document %s: %s", guide.Email, d.ID.Hex(), err.Error())
		}
	}
}

func (s *SweepService) remindAnnouncementDeadlines(ctx context.Context, now time.Time) {
	from, to := TomorrowWindow(now)
	announcements, err := s.store.AnnouncementsDueBetween(ctx, from, to)
	if err != nil {
		s.logger.Sugar().Errorf("sweep: failed to query due announcements: %s", err.Error())
		return
	}
	for _, a := range announcements {
		recipients, err := s.store.AudienceIDs(ctx, a.TargetAudience)
		if err != nil {
			s.logger.Sugar().Errorf("sweep: failed to resolve audience for announcement %s: %s", a.ID.Hex(), err.Error())
			continue
		}
		s.notifier.NotifyDeadlineReminder(ctx, a.ID, a.Title, a.Deadline, recipients)
	}
}
