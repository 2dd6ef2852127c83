package communication

import (
	"ProjectTracker/internal/auth"
	"ProjectTracker/internal/notification"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrForbidden = errors.New("not permitted")

type communicationStore interface {
	CreateMessage(ctx context.Context, m *Message) error
	FindMessageByID(ctx context.Context, id primitive.ObjectID) (*Message, error)
	Inbox(ctx context.Context, userID primitive.ObjectID) ([]*Message, error)
	Sent(ctx context.Context, userID primitive.ObjectID) ([]*Message, error)
	MarkMessageRead(ctx context.Context, id, receiverID primitive.ObjectID) (*Message, error)
	HideMessage(ctx context.Context, id, partyID primitive.ObjectID) error
	CreateAnnouncement(ctx context.Context, a *Announcement) error
	ListAnnouncementsFor(ctx context.Context, audience string) ([]*Announcement, error)
	DeactivateAnnouncement(ctx context.Context, id primitive.ObjectID) error
}

type accountDirectory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.Account, error)
	ListByRole(ctx context.Context, roles ...string) ([]*auth.Account, error)
}

type notifier interface {
	NotifyMessageReceived(ctx context.Context, messageID, receiverID primitive.ObjectID, senderName, subject, priority string) *notification.Notification
	NotifyAnnouncement(ctx context.Context, announcementID primitive.ObjectID, title, announcementType string, recipientIDs []primitive.ObjectID) []*notification.Notification
}

type CommunicationService struct {
	store    communicationStore
	accounts accountDirectory
	notifier notifier
	logger   *zap.Logger

	// dispatch runs a notification side effect detached from the request.
	dispatch func(fn func(ctx context.Context))
}

func NewCommunicationService(repo *CommunicationRepository, accounts *auth.AccountRepository, notifier *notification.NotificationService, logger *zap.Logger) *CommunicationService {
	return &CommunicationService{
		store:    repo,
		accounts: accounts,
		notifier: notifier,
		logger:   logger,
		dispatch: func(fn func(ctx context.Context)) { go fn(context.Background()) },
	}
}

func validPriority(p string) bool {
	return p == notification.PriorityLow || p == notification.PriorityMedium || p == notification.PriorityHigh
}

// SendMessage validates that the receiver is a real, distinct account, stores
// the message and fires a best-effort notification to the receiver.
func (s *CommunicationService) SendMessage(ctx context.Context, sender *auth.JWTClaims, req SendMessageRequest) (*Message, error) {
	if req.Subject == "" || req.Message == "" {
		return nil, fmt.Errorf("subject and message are required")
	}
	senderID, err := primitive.ObjectIDFromHex(sender.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender")
	}
	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("invalid receiver id")
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("cannot send a message to yourself")
	}
	receiver, err := s.accounts.FindByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil || !receiver.IsActive {
		return nil, ErrReceiverNotFound
	}

	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", req.Priority)
	}

	m := &Message{
		ID:          primitive.NewObjectID(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Subject:     req.Subject,
		Body:        req.Message,
		Priority:    priority,
		Attachments: req.Attachments,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	msg := *m
	senderName := sender.Name
	s.dispatch(func(ctx context.Context) {
		s.notifier.NotifyMessageReceived(ctx, msg.ID, msg.ReceiverID, senderName, msg.Subject, msg.Priority)
	})
	return m, nil
}

var ErrReceiverNotFound = errors.New("receiver not found")

func (s *CommunicationService) Inbox(ctx context.Context, userID primitive.ObjectID) ([]*Message, error) {
	return s.store.Inbox(ctx, userID)
}

func (s *CommunicationService) Sent(ctx context.Context, userID primitive.ObjectID) ([]*Message, error) {
	return s.store.Sent(ctx, userID)
}

func (s *CommunicationService) MarkMessageRead(ctx context.Context, id, receiverID primitive.ObjectID) (*Message, error) {
	return s.store.MarkMessageRead(ctx, id, receiverID)
}

func (s *CommunicationService) DeleteMessage(ctx context.Context, id, partyID primitive.ObjectID) error {
	return s.store.HideMessage(ctx, id, partyID)
}

func validAnnouncementType(t string) bool {
	switch t {
	case AnnouncementGeneral, AnnouncementDeadline, AnnouncementImportant, AnnouncementEvent:
		return true
	}
	return false
}

func validAudience(a string) bool {
	switch a {
	case AudienceAll, AudienceStudents, AudienceStaff:
		return true
	}
	return false
}

// audienceRoles maps a target audience to account roles.
func audienceRoles(audience string) []string {
	switch audience {
	case AudienceStudents:
		return []string{auth.RoleStudent}
	case AudienceStaff:
		return []string{auth.RoleStaff}
	default:
		return []string{auth.RoleStudent, auth.RoleStaff}
	}
}

// CreateAnnouncement stores the announcement, resolves the audience to active
// accounts and fans a notification out to each of them.
func (s *CommunicationService) CreateAnnouncement(ctx context.Context, creator *auth.JWTClaims, req CreateAnnouncementRequest) (*Announcement, error) {
	if creator.Role != auth.RoleHOD && creator.Role != auth.RoleStaff {
		return nil, ErrForbidden
	}
	if req.Title == "" || req.Message == "" {
		return nil, fmt.Errorf("title and message are required")
	}
	if !validAnnouncementType(req.Type) {
		return nil, fmt.Errorf("invalid announcement type %q", req.Type)
	}
	if !validAudience(req.TargetAudience) {
		return nil, fmt.Errorf("invalid target audience %q", req.TargetAudience)
	}
	creatorID, err := primitive.ObjectIDFromHex(creator.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid creator")
	}

	a := &Announcement{
		ID:             primitive.NewObjectID(),
		Title:          req.Title,
		Message:        req.Message,
		Type:           req.Type,
		CreatedBy:      creatorID,
		CreatorRole:    creator.Role,
		TargetAudience: req.TargetAudience,
		Deadline:       req.Deadline,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateAnnouncement(ctx, a); err != nil {
		return nil, err
	}

	ann := *a
	s.dispatch(func(ctx context.Context) {
		recipients, err := s.accounts.ListByRole(ctx, audienceRoles(ann.TargetAudience)...)
		if err != nil {
			s.logger.Sugar().Errorf("failed to resolve audience for announcement %s: %s", ann.ID.Hex(), err.Error())
			return
		}
		ids := make([]primitive.ObjectID, 0, len(recipients))
		for _, r := range recipients {
			if r.ID != ann.CreatedBy {
				ids = append(ids, r.ID)
			}
		}
		s.notifier.NotifyAnnouncement(ctx, ann.ID, ann.Title, ann.Type, ids)
	})
	return a, nil
}

// ListAnnouncements filters by the caller's audience bucket; HOD sees all.
func (s *CommunicationService) ListAnnouncements(ctx context.Context, role string) ([]*Announcement, error) {
	switch role {
	case auth.RoleStudent:
		return s.store.ListAnnouncementsFor(ctx, AudienceStudents)
	case auth.RoleStaff:
		return s.store.ListAnnouncementsFor(ctx, AudienceStaff)
	default:
		return s.store.ListAnnouncementsFor(ctx, "")
	}
}

func (s *CommunicationService) DeactivateAnnouncement(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeactivateAnnouncement(ctx, id)
}
