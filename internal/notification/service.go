package notification

import (
	"ProjectTracker/internal/config"
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type notificationStore interface {
	Create(ctx context.Context, n *Notification) error
	CreateMany(ctx context.Context, ns []*Notification) error
	HasUnreadOfType(ctx context.Context, userID primitive.ObjectID, notifType string, refID primitive.ObjectID) (bool, error)
}

type emailSender interface {
	SendEmail(to, subject, body string) error
}

// NotificationService turns domain events into notification records and, for
// a subset of events, a best-effort email. Every method swallows its own
// errors: a failed notification must never fail the triggering mutation.
// Callers dispatch on a goroutine with a background context.
type NotificationService struct {
	store     notificationStore
	email     emailSender
	logger    *zap.Logger
	clientURL string
}

func NewNotificationService(repo *NotificationRepository, emailService *config.EmailService, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:     repo,
		email:     emailService,
		logger:    logger,
		clientURL: os.Getenv("CLIENT_URL"),
	}
}

func (s *NotificationService) create(ctx context.Context, n *Notification) *Notification {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if err := s.store.Create(ctx, n); err != nil {
		s.logger.Sugar().Errorf("failed to create %s notification for user %s: %s", n.Type, n.UserID.Hex(), err.Error())
		return nil
	}
	return n
}

func (s *NotificationService) actionURL(path string) string {
	return s.clientURL + path
}

// NotifyProjectSubmission notifies the assigned guide; no-op when the project
// has no guide yet.
func (s *NotificationService) NotifyProjectSubmission(ctx context.Context, projectID primitive.ObjectID, projectTitle string, guideID primitive.ObjectID, studentName string) *Notification {
	if guideID.IsZero() {
		return nil
	}
	return s.create(ctx, &Notification{
		UserID:    guideID,
		Type:      TypeProjectSubmitted,
		Title:     "New Project Submission",
		Message:   fmt.Sprintf("%s submitted the project %q for approval", studentName, projectTitle),
		RelatedTo: &RelatedRef{Kind: RefProject, RefID: projectID},
		Priority:  PriorityMedium,
		ActionURL: s.actionURL("/projects/" + projectID.Hex()),
	})
}

func (s *NotificationService) NotifyProjectApproval(ctx context.Context, projectID primitive.ObjectID, projectTitle string, studentID primitive.ObjectID, approvedBy string) *Notification {
	return s.create(ctx, &Notification{
		UserID:    studentID,
		Type:      TypeProjectApproved,
		Title:     "Project Approved",
		Message:   fmt.Sprintf("Your project %q was approved by %s", projectTitle, approvedBy),
		RelatedTo: &RelatedRef{Kind: RefProject, RefID: projectID},
		Priority:  PriorityHigh,
		ActionURL: s.actionURL("/projects/" + projectID.Hex()),
	})
}

func (s *NotificationService) NotifyProjectRejection(ctx context.Context, projectID primitive.ObjectID, projectTitle string, studentID primitive.ObjectID, rejectedBy, remarks string) *Notification {
	message := fmt.Sprintf("Your project %q was rejected by %s", projectTitle, rejectedBy)
	if remarks != "" {
		message += ": " + remarks
	}
	return s.create(ctx, &Notification{
		UserID:    studentID,
		Type:      TypeProjectRejected,
		Title:     "Project Rejected",
		Message:   message,
		RelatedTo: &RelatedRef{Kind: RefProject, RefID: projectID},
		Priority:  PriorityHigh,
		ActionURL: s.actionURL("/projects/" + projectID.Hex()),
	})
}

func (s *NotificationService) NotifyGuideAssignment(ctx context.Context, projectID primitive.ObjectID, projectTitle string, studentID, guideID primitive.ObjectID, guideName string) []*Notification {
	var created []*Notification
	if n := s.create(ctx, &Notification{
		UserID:    studentID,
		Type:      TypeGuideAssigned,
		Title:     "Guide Assigned",
		Message:   fmt.Sprintf("%s has been assigned as the guide for your project %q", guideName, projectTitle),
		RelatedTo: &RelatedRef{Kind: RefProject, RefID: projectID},
		ActionURL: s.actionURL("/projects/" + projectID.Hex()),
	}); n != nil {
		created = append(created, n)
	}
	if n := s.create(ctx, &Notification{
		UserID:    guideID,
		Type:      TypeGuideAssigned,
		Title:     "New Project Assigned",
		Message:   fmt.Sprintf("You have been assigned to guide the project %q", projectTitle),
		RelatedTo: &RelatedRef{Kind: RefProject, RefID: projectID},
		ActionURL: s.actionURL("/projects/" + projectID.Hex()),
	}); n != nil {
		created = append(created, n)
	}
	return created
}

// NotifyDocumentSubmission notifies the project's guide and then attempts an
// email. The notification is created first; a failed email never rolls it
// back, the two are independent best-effort writes.
func (s *NotificationService) NotifyDocumentSubmission(ctx context.Context, documentID primitive.ObjectID, docTitle, projectTitle string, guideID primitive.ObjectID, guideEmail, studentName string) *Notification {
	if guideID.IsZero() {
		return nil
	}
	n := s.create(ctx, &Notification{
		UserID:    guideID,
		Type:      TypeDocumentSubmitted,
		Title:     "New Document Submitted",
		Message:   fmt.Sprintf("%s uploaded %q for project %q", studentName, docTitle, projectTitle),
		RelatedTo: &RelatedRef{Kind: RefDocument, RefID: documentID},
		ActionURL: s.actionURL("/documents/" + documentID.Hex()),
	})
	if guideEmail != "" {
		subject := "Document pending review: " + docTitle
		body := fmt.Sprintf("%s uploaded a new document %q for project %q. Please review it.", studentName, docTitle, projectTitle)
		if err := s.email.SendEmail(guideEmail, subject, body); err != nil {
			s.logger.Sugar().Errorf("failed to email guide %s about document %s: %s", guideEmail, documentID.Hex(), err.Error())
		}
	}
	return n
}

// NotifyDocumentReview notifies the owning student. Priority is High for any
// outcome other than Approved.
func (s *NotificationService) NotifyDocumentReview(ctx context.Context, documentID primitive.ObjectID, docTitle string, studentID primitive.ObjectID, reviewerName, status string) *Notification {
	priority := PriorityHigh
	if status == "Approved" {
		priority = PriorityMedium
	}
	return s.create(ctx, &Notification{
		UserID:    studentID,
		Type:      TypeDocumentReviewed,
		Title:     "Document Reviewed",
		Message:   fmt.Sprintf("%s reviewed %q: %s", reviewerName, docTitle, status),
		RelatedTo: &RelatedRef{Kind: RefDocument, RefID: documentID},
		Priority:  priority,
		ActionURL: s.actionURL("/documents/" + documentID.Hex()),
	})
}

func (s *NotificationService) NotifyMilestoneAssignment(ctx context.Context, milestoneID primitive.ObjectID, title string, studentID primitive.ObjectID, dueDate time.Time) *Notification {
	return s.create(ctx, &Notification{
		UserID:    studentID,
		Type:      TypeMilestoneAssigned,
		Title:     "New Milestone",
		Message:   fmt.Sprintf("Milestone %q is due on %s", title, dueDate.Format("02 Jan 2006")),
		RelatedTo: &RelatedRef{Kind: RefMilestone, RefID: milestoneID},
		ActionURL: s.actionURL("/milestones/" + milestoneID.Hex()),
	})
}

// DaysUntilDue rounds the remaining time up to whole days.
func DaysUntilDue(now, due time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// NotifyMilestoneDueSoon emits a reminder that expires at the milestone's due
// date, so the TTL purge removes it once it is overdue. Skipped when an
// unread due-soon reminder for the milestone already exists, keeping repeat
// sweeps idempotent.
func (s *NotificationService) NotifyMilestoneDueSoon(ctx context.Context, milestoneID primitive.ObjectID, title string, studentID primitive.ObjectID, dueDate time.Time) *Notification {
	exists, err := s.store.HasUnreadOfType(ctx, studentID, TypeMilestoneDueSoon, milestoneID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check existing due-soon reminder for milestone %s: %s", milestoneID.Hex(), err.Error())
		return nil
	}
	if exists {
		return nil
	}

	days := DaysUntilDue(time.Now().UTC(), dueDate)
	priority := PriorityMedium
	if days <= 1 {
		priority = PriorityHigh
	}
	expires := dueDate
	return s.create(ctx, &Notification{
		UserID:    studentID,
		Type:      TypeMilestoneDueSoon,
		Title:     "Milestone Due Soon",
		Message:   fmt.Sprintf("Milestone %q is due in %d day(s)", title, days),
		RelatedTo: &RelatedRef{Kind: RefMilestone, RefID: milestoneID},
		Priority:  priority,
		ExpiresAt: &expires,
		ActionURL: s.actionURL("/milestones/" + milestoneID.Hex()),
	})
}

// NotifyTeamCreation fans out one notification per member as a single bulk
// insert.
func (s *NotificationService) NotifyTeamCreation(ctx context.Context, teamID primitive.ObjectID, teamName string, memberIDs []primitive.ObjectID) []*Notification {
	now := time.Now().UTC()
	ns := make([]*Notification, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		ns = append(ns, &Notification{
			ID:        primitive.NewObjectID(),
			UserID:    memberID,
			Type:      TypeTeamCreated,
			Title:     "Added to Team",
			Message:   fmt.Sprintf("You have been added to team %q", teamName),
			RelatedTo: &RelatedRef{Kind: RefTeam, RefID: teamID},
			Priority:  PriorityMedium,
			ActionURL: s.actionURL("/teams/" + teamID.Hex()),
			CreatedAt: now,
		})
	}
	if err := s.store.CreateMany(ctx, ns); err != nil {
		s.logger.Sugar().Errorf("failed to fan out team creation notifications for team %s: %s", teamID.Hex(), err.Error())
		return nil
	}
	return ns
}

// AnnouncementPriority maps an announcement type to a notification priority.
// Important and Deadline announcements are High.
func AnnouncementPriority(announcementType string) string {
	switch announcementType {
	case "Important", "Deadline":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// NotifyAnnouncement fans out one notification per pre-resolved recipient,
// each referencing the same announcement.
func (s *NotificationService) NotifyAnnouncement(ctx context.Context, announcementID primitive.ObjectID, title, announcementType string, recipientIDs []primitive.ObjectID) []*Notification {
	if len(recipientIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	priority := AnnouncementPriority(announcementType)
	ns := make([]*Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		ns = append(ns, &Notification{
			ID:        primitive.NewObjectID(),
			UserID:    recipientID,
			Type:      TypeAnnouncement,
			Title:     "New Announcement",
			Message:   title,
			RelatedTo: &RelatedRef{Kind: RefAnnouncement, RefID: announcementID},
			Priority:  priority,
			ActionURL: s.actionURL("/announcements"),
			CreatedAt: now,
		})
	}
	if err := s.store.CreateMany(ctx, ns); err != nil {
		s.logger.Sugar().Errorf("failed to fan out announcement %s: %s", announcementID.Hex(), err.Error())
		return nil
	}
	return ns
}

func (s *NotificationService) NotifyMarksAssigned(ctx context.Context, projectID primitive.ObjectID, studentID primitive.ObjectID, total int) *Notification {
	return s.create(ctx, &Notification{
		UserID:    studentID,
		Type:      TypeMarksAssigned,
		Title:     "Marks Assigned",
		Message:   fmt.Sprintf("Your project has been evaluated: %d/40", total),
		RelatedTo: &RelatedRef{Kind: RefProject, RefID: projectID},
		ActionURL: s.actionURL("/marks"),
	})
}

func (s *NotificationService) NotifyMessageReceived(ctx context.Context, messageID, receiverID primitive.ObjectID, senderName, subject, priority string) *Notification {
	if priority == "" {
		priority = PriorityMedium
	}
	return s.create(ctx, &Notification{
		UserID:    receiverID,
		Type:      TypeMessageReceived,
		Title:     "New Message",
		Message:   fmt.Sprintf("%s sent you a message: %s", senderName, subject),
		RelatedTo: &RelatedRef{Kind: RefMessage, RefID: messageID},
		Priority:  priority,
		ActionURL: s.actionURL("/messages/" + messageID.Hex()),
	})
}

// NotifyDeadlineReminder is used by the sweep for announcement deadlines.
func (s *NotificationService) NotifyDeadlineReminder(ctx context.Context, announcementID primitive.ObjectID, title string, deadline time.Time, recipientIDs []primitive.ObjectID) []*Notification {
	if len(recipientIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	expires := deadline
	ns := make([]*Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		ns = append(ns, &Notification{
			ID:        primitive.NewObjectID(),
			UserID:    recipientID,
			Type:      TypeDeadlineReminder,
			Title:     "Deadline Tomorrow",
			Message:   fmt.Sprintf("Reminder: %q is due on %s", title, deadline.Format("02 Jan 2006")),
			RelatedTo: &RelatedRef{Kind: RefAnnouncement, RefID: announcementID},
			Priority:  PriorityHigh,
			ExpiresAt: &expires,
			ActionURL: s.actionURL("/announcements"),
			CreatedAt: now,
		})
	}
	if err := s.store.CreateMany(ctx, ns); err != nil {
		s.logger.Sugar().Errorf("failed to fan out deadline reminder for announcement %s: %s", announcementID.Hex(), err.Error())
		return nil
	}
	return ns
}
