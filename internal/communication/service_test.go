package communication

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ProjectTracker/internal/auth"
	"ProjectTracker/internal/notification"
)

type memCommStore struct {
	messages      []*Message
	announcements []*Announcement
}

func (s *memCommStore) CreateMessage(ctx context.Context, m *Message) error {
	s.messages = append(s.messages, m)
	return nil
}

func (s *memCommStore) FindMessageByID(ctx context.Context, id primitive.ObjectID) (*Message, error) {
	for _, m := range s.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (s *memCommStore) Inbox(ctx context.Context, userID primitive.ObjectID) ([]*Message, error) {
	var out []*Message
	for _, m := range s.messages {
		if m.ReceiverID == userID && !hidden(m, userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memCommStore) Sent(ctx context.Context, userID primitive.ObjectID) ([]*Message, error) {
	var out []*Message
	for _, m := range s.messages {
		if m.SenderID == userID && !hidden(m, userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func hidden(m *Message, userID primitive.ObjectID) bool {
	for _, id := range m.DeletedFor {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *memCommStore) MarkMessageRead(ctx context.Context, id, receiverID primitive.ObjectID) (*Message, error) {
	for _, m := range s.messages {
		if m.ID == id {
			if m.ReceiverID != receiverID {
				return nil, ErrNotFound
			}
			if !m.IsRead {
				now := time.Now().UTC()
				m.IsRead = true
				m.ReadAt = &now
			}
			return m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memCommStore) HideMessage(ctx context.Context, id, partyID primitive.ObjectID) error {
	for _, m := range s.messages {
		if m.ID == id && (m.SenderID == partyID || m.ReceiverID == partyID) {
			m.DeletedFor = append(m.DeletedFor, partyID)
			return nil
		}
	}
	return ErrNotFound
}

func (s *memCommStore) CreateAnnouncement(ctx context.Context, a *Announcement) error {
	s.announcements = append(s.announcements, a)
	return nil
}

func (s *memCommStore) ListAnnouncementsFor(ctx context.Context, audience string) ([]*Announcement, error) {
	var out []*Announcement
	for _, a := range s.announcements {
		if !a.IsActive {
			continue
		}
		if audience == "" || a.TargetAudience == AudienceAll || a.TargetAudience == audience {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memCommStore) DeactivateAnnouncement(ctx context.Context, id primitive.ObjectID) error {
	for _, a := range s.announcements {
		if a.ID == id {
			a.IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

type memAccounts struct {
	accounts map[primitive.ObjectID]*auth.Account
}

func (d *memAccounts) FindByID(ctx context.Context, id primitive.ObjectID) (*auth.Account, error) {
	return d.accounts[id], nil
}

func (d *memAccounts) ListByRole(ctx context.Context, roles ...string) ([]*auth.Account, error) {
	var out []*auth.Account
	for _, a := range d.accounts {
		if !a.IsActive {
			continue
		}
		for _, role := range roles {
			if a.Role == role {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

type fanoutRecorder struct {
	messages      []primitive.ObjectID
	announcements map[primitive.ObjectID][]primitive.ObjectID
	annTypes      map[primitive.ObjectID]string
}

func (r *fanoutRecorder) NotifyMessageReceived(ctx context.Context, messageID, receiverID primitive.ObjectID, senderName, subject, priority string) *notification.Notification {
	r.messages = append(r.messages, messageID)
	return nil
}

func (r *fanoutRecorder) NotifyAnnouncement(ctx context.Context, announcementID primitive.ObjectID, title, announcementType string, recipientIDs []primitive.ObjectID) []*notification.Notification {
	if r.announcements == nil {
		r.announcements = map[primitive.ObjectID][]primitive.ObjectID{}
		r.annTypes = map[primitive.ObjectID]string{}
	}
	r.announcements[announcementID] = recipientIDs
	r.annTypes[announcementID] = announcementType
	return nil
}

func newTestCommService(store *memCommStore, dir *memAccounts, rec *fanoutRecorder) *CommunicationService {
	if dir == nil {
		dir = &memAccounts{accounts: map[primitive.ObjectID]*auth.Account{}}
	}
	return &CommunicationService{
		store:    store,
		accounts: dir,
		notifier: rec,
		logger:   zap.NewNop(),
		dispatch: func(fn func(ctx context.Context)) { fn(context.Background()) },
	}
}

func claimsFor(id primitive.ObjectID, name, role string) *auth.JWTClaims {
	return &auth.JWTClaims{AccountID: id.Hex(), Name: name, Role: role}
}

func TestSendMessageRejectsSelf(t *testing.T) {
	senderID := primitive.NewObjectID()
	svc := newTestCommService(&memCommStore{}, nil, &fanoutRecorder{})

	_, err := svc.SendMessage(context.Background(), claimsFor(senderID, "Raj", auth.RoleStudent), SendMessageRequest{
		ReceiverID: senderID.Hex(),
		Subject:    "Hi",
		Message:    "Hello me",
	})

	require.EqualError(t, err, "cannot send a message to yourself")
}

func TestSendMessageUnknownReceiver(t *testing.T) {
	svc := newTestCommService(&memCommStore{}, nil, &fanoutRecorder{})

	_, err := svc.SendMessage(context.Background(), claimsFor(primitive.NewObjectID(), "Raj", auth.RoleStudent), SendMessageRequest{
		ReceiverID: primitive.NewObjectID().Hex(),
		Subject:    "Hi",
		Message:    "Anyone there?",
	})

	require.ErrorIs(t, err, ErrReceiverNotFound)
}

func TestSendMessageInactiveReceiver(t *testing.T) {
	receiverID := primitive.NewObjectID()
	dir := &memAccounts{accounts: map[primitive.ObjectID]*auth.Account{
		receiverID: {ID: receiverID, Name: "Old Staff", Role: auth.RoleStaff, IsActive: false},
	}}
	svc := newTestCommService(&memCommStore{}, dir, &fanoutRecorder{})

	_, err := svc.SendMessage(context.Background(), claimsFor(primitive.NewObjectID(), "Raj", auth.RoleStudent), SendMessageRequest{
		ReceiverID: receiverID.Hex(),
		Subject:    "Hi",
		Message:    "Hello",
	})

	require.ErrorIs(t, err, ErrReceiverNotFound)
}

func TestSendMessageStoresAndNotifies(t *testing.T) {
	store := &memCommStore{}
	receiverID := primitive.NewObjectID()
	dir := &memAccounts{accounts: map[primitive.ObjectID]*auth.Account{
		receiverID: {ID: receiverID, Name: "Dr. Sharma", Role: auth.RoleStaff, IsActive: true},
	}}
	rec := &fanoutRecorder{}
	svc := newTestCommService(store, dir, rec)

	m, err := svc.SendMessage(context.Background(), claimsFor(primitive.NewObjectID(), "Raj", auth.RoleStudent), SendMessageRequest{
		ReceiverID: receiverID.Hex(),
		Subject:    "Doubt about milestone",
		Message:    "Can we meet tomorrow?",
	})

	require.NoError(t, err)
	assert.Equal(t, notification.PriorityMedium, m.Priority)
	assert.False(t, m.IsRead)
	require.Len(t, store.messages, 1)
	require.Equal(t, []primitive.ObjectID{m.ID}, rec.messages)

	_, err = svc.SendMessage(context.Background(), claimsFor(primitive.NewObjectID(), "Raj", auth.RoleStudent), SendMessageRequest{
		ReceiverID: receiverID.Hex(),
		Subject:    "Bad priority",
		Message:    "x",
		Priority:   "Critical",
	})
	require.EqualError(t, err, `invalid priority "Critical"`)
}

func TestMarkMessageReadIdempotent(t *testing.T) {
	store := &memCommStore{}
	receiverID := primitive.NewObjectID()
	msg := &Message{ID: primitive.NewObjectID(), SenderID: primitive.NewObjectID(), ReceiverID: receiverID}
	store.messages = append(store.messages, msg)
	svc := newTestCommService(store, nil, &fanoutRecorder{})

	first, err := svc.MarkMessageRead(context.Background(), msg.ID, receiverID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)
	readAt := *first.ReadAt

	second, err := svc.MarkMessageRead(context.Background(), msg.ID, receiverID)
	require.NoError(t, err)
	assert.True(t, second.ReadAt.Equal(readAt))
}

func TestDeleteMessageHidesForOneParty(t *testing.T) {
	store := &memCommStore{}
	senderID := primitive.NewObjectID()
	receiverID := primitive.NewObjectID()
	msg := &Message{ID: primitive.NewObjectID(), SenderID: senderID, ReceiverID: receiverID}
	store.messages = append(store.messages, msg)
	svc := newTestCommService(store, nil, &fanoutRecorder{})

	require.NoError(t, svc.DeleteMessage(context.Background(), msg.ID, receiverID))

	inbox, err := svc.Inbox(context.Background(), receiverID)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	sent, err := svc.Sent(context.Background(), senderID)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestCreateAnnouncementStudentForbidden(t *testing.T) {
	svc := newTestCommService(&memCommStore{}, nil, &fanoutRecorder{})

	_, err := svc.CreateAnnouncement(context.Background(), claimsFor(primitive.NewObjectID(), "Raj", auth.RoleStudent), CreateAnnouncementRequest{
		Title:          "Nope",
		Message:        "Students cannot announce",
		Type:           AnnouncementGeneral,
		TargetAudience: AudienceAll,
	})

	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateAnnouncementValidation(t *testing.T) {
	svc := newTestCommService(&memCommStore{}, nil, &fanoutRecorder{})
	hod := claimsFor(primitive.NewObjectID(), "Dr. Rao", auth.RoleHOD)

	_, err := svc.CreateAnnouncement(context.Background(), hod, CreateAnnouncementRequest{
		Title: "Missing body", Type: AnnouncementGeneral, TargetAudience: AudienceAll,
	})
	require.EqualError(t, err, "title and message are required")

	_, err = svc.CreateAnnouncement(context.Background(), hod, CreateAnnouncementRequest{
		Title: "x", Message: "y", Type: "Festive", TargetAudience: AudienceAll,
	})
	require.EqualError(t, err, `invalid announcement type "Festive"`)

	_, err = svc.CreateAnnouncement(context.Background(), hod, CreateAnnouncementRequest{
		Title: "x", Message: "y", Type: AnnouncementGeneral, TargetAudience: "Everyone",
	})
	require.EqualError(t, err, `invalid target audience "Everyone"`)
}

func TestCreateAnnouncementFansOutExcludingCreator(t *testing.T) {
	store := &memCommStore{}
	creatorID := primitive.NewObjectID()
	staffID := primitive.NewObjectID()
	studentA := primitive.NewObjectID()
	studentB := primitive.NewObjectID()
	dir := &memAccounts{accounts: map[primitive.ObjectID]*auth.Account{
		creatorID: {ID: creatorID, Name: "Dr. Sharma", Role: auth.RoleStaff, IsActive: true},
		staffID:   {ID: staffID, Name: "Dr. Rao", Role: auth.RoleStaff, IsActive: true},
		studentA:  {ID: studentA, Name: "Raj", Role: auth.RoleStudent, IsActive: true},
		studentB:  {ID: studentB, Name: "Priya", Role: auth.RoleStudent, IsActive: true},
	}}
	rec := &fanoutRecorder{}
	svc := newTestCommService(store, dir, rec)

	a, err := svc.CreateAnnouncement(context.Background(), claimsFor(creatorID, "Dr. Sharma", auth.RoleStaff), CreateAnnouncementRequest{
		Title:          "Review schedule",
		Message:        "Reviews start Monday",
		Type:           AnnouncementImportant,
		TargetAudience: AudienceAll,
	})

	require.NoError(t, err)
	assert.True(t, a.IsActive)
	recipients := rec.announcements[a.ID]
	require.Len(t, recipients, 3)
	assert.NotContains(t, recipients, creatorID)
	assert.Equal(t, AnnouncementImportant, rec.annTypes[a.ID])
}

func TestListAnnouncementsByRole(t *testing.T) {
	store := &memCommStore{}
	now := time.Now().UTC()
	store.announcements = []*Announcement{
		{ID: primitive.NewObjectID(), Title: "For everyone", TargetAudience: AudienceAll, IsActive: true, CreatedAt: now},
		{ID: primitive.NewObjectID(), Title: "Students only", TargetAudience: AudienceStudents, IsActive: true, CreatedAt: now},
		{ID: primitive.NewObjectID(), Title: "Staff only", TargetAudience: AudienceStaff, IsActive: true, CreatedAt: now},
		{ID: primitive.NewObjectID(), Title: "Retired", TargetAudience: AudienceAll, IsActive: false, CreatedAt: now},
	}
	svc := newTestCommService(store, nil, &fanoutRecorder{})

	studentView, err := svc.ListAnnouncements(context.Background(), auth.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, studentView, 2)

	staffView, err := svc.ListAnnouncements(context.Background(), auth.RoleStaff)
	require.NoError(t, err)
	assert.Len(t, staffView, 2)

	hodView, err := svc.ListAnnouncements(context.Background(), auth.RoleHOD)
	require.NoError(t, err)
	assert.Len(t, hodView, 3)
}
