package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memSweepStore struct {
	milestones    []*MilestoneDue
	documents     []*PendingDocument
	guides        map[primitive.ObjectID]*GuideContact
	announcements []*AnnouncementDue
	audience      map[string][]primitive.ObjectID
}

func (s *memSweepStore) MilestonesDueBetween(ctx context.Context, from, to time.Time) ([]*MilestoneDue, error) {
	var out []*MilestoneDue
	for _, m := range s.milestones {
		if m.Status == "Completed" {
			continue
		}
		if !m.DueDate.Before(from) && m.DueDate.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memSweepStore) DocumentsPendingSince(ctx context.Context, cutoff time.Time) ([]*PendingDocument, error) {
	var out []*PendingDocument
	for _, d := range s.documents {
		if !d.UploadedAt.After(cutoff) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memSweepStore) GuideForProject(ctx context.Context, projectID primitive.ObjectID) (*GuideContact, error) {
	return s.guides[projectID], nil
}

func (s *memSweepStore) AnnouncementsDueBetween(ctx context.Context, from, to time.Time) ([]*AnnouncementDue, error) {
	var out []*AnnouncementDue
	for _, a := range s.announcements {
		if !a.Deadline.Before(from) && a.Deadline.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memSweepStore) AudienceIDs(ctx context.Context, targetAudience string) ([]primitive.ObjectID, error) {
	return s.audience[targetAudience], nil
}

func newTestSweep(store *memSweepStore, notifStore *memStore, mailer *fakeMailer) *SweepService {
	return &SweepService{
		store:    store,
		notifier: newTestService(notifStore, mailer),
		email:    mailer,
		logger:   zap.NewNop(),
	}
}

func TestTomorrowWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 45, 12, 0, time.UTC)
	from, to := TomorrowWindow(now)

	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), to)
}

func TestStalenessBucket(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"fresh", 6 * time.Hour, ""},
		{"just under a day", 23 * time.Hour, ""},
		{"exactly a day", 24 * time.Hour, "reminder"},
		{"two days", 48 * time.Hour, "reminder"},
		{"exactly three days", 72 * time.Hour, "escalation"},
		{"week old", 7 * 24 * time.Hour, "escalation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StalenessBucket(now.Add(-tt.age), now))
		})
	}
}

func TestSweepRemindsDueMilestonesOnce(t *testing.T) {
	now := time.Now().UTC()
	from, _ := TomorrowWindow(now)
	studentID := primitive.NewObjectID()
	store := &memSweepStore{
		milestones: []*MilestoneDue{
			{ID: primitive.NewObjectID(), StudentID: studentID, Title: "Literature Review", DueDate: from.Add(10 * time.Hour), Status: "Pending"},
			{ID: primitive.NewObjectID(), StudentID: studentID, Title: "Final Report", DueDate: from.Add(10 * time.Hour), Status: "Completed"},
		},
		guides:   map[primitive.ObjectID]*GuideContact{},
		audience: map[string][]primitive.ObjectID{},
	}
	notifStore := &memStore{}
	sweep := newTestSweep(store, notifStore, &fakeMailer{})

	sweep.Run(context.Background())
	sweep.Run(context.Background())

	// Completed milestone is filtered out, and the second run sees the
	// unread reminder and skips.
	require.Len(t, notifStore.notifications, 1)
	n := notifStore.notifications[0]
	assert.Equal(t, TypeMilestoneDueSoon, n.Type)
	assert.Equal(t, studentID, n.UserID)
	require.NotNil(t, n.ExpiresAt)
}

func TestSweepEmailsStaleDocuments(t *testing.T) {
	now := time.Now().UTC()
	projectReminder := primitive.NewObjectID()
	projectEscalation := primitive.NewObjectID()
	projectNoGuide := primitive.NewObjectID()
	store := &memSweepStore{
		documents: []*PendingDocument{
			{ID: primitive.NewObjectID(), ProjectID: projectReminder, Title: "Design Doc", UploadedAt: now.Add(-30 * time.Hour)},
			{ID: primitive.NewObjectID(), ProjectID: projectEscalation, Title: "Test Plan", UploadedAt: now.Add(-80 * time.Hour)},
			{ID: primitive.NewObjectID(), ProjectID: projectNoGuide, Title: "Orphan Doc", UploadedAt: now.Add(-50 * time.Hour)},
		},
		guides: map[primitive.ObjectID]*GuideContact{
			projectReminder:   {ID: primitive.NewObjectID(), Name: "Dr. Sharma", Email: "sharma@college.edu"},
			projectEscalation: {ID: primitive.NewObjectID(), Name: "Dr. Rao", Email: "rao@college.edu"},
		},
		audience: map[string][]primitive.ObjectID{},
	}
	mailer := &fakeMailer{}
	sweep := newTestSweep(store, &memStore{}, mailer)

	sweep.Run(context.Background())

	require.Len(t, mailer.sent, 2)
	bySubject := map[string]sentMail{}
	for _, m := range mailer.sent {
		bySubject[m.to] = m
	}
	assert.True(t, strings.HasPrefix(bySubject["sharma@college.edu"].subject, "Pending review:"))
	assert.True(t, strings.HasPrefix(bySubject["rao@college.edu"].subject, "Overdue review:"))
}

func TestSweepFansOutAnnouncementDeadlines(t *testing.T) {
	now := time.Now().UTC()
	from, _ := TomorrowWindow(now)
	students := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	announcementID := primitive.NewObjectID()
	store := &memSweepStore{
		announcements: []*AnnouncementDue{
			{ID: announcementID, Title: "Abstract submission", Deadline: from.Add(9 * time.Hour), TargetAudience: "Students"},
		},
		audience: map[string][]primitive.ObjectID{"Students": students},
	}
	notifStore := &memStore{}
	sweep := newTestSweep(store, notifStore, &fakeMailer{})

	sweep.Run(context.Background())

	require.Len(t, notifStore.notifications, 2)
	for _, n := range notifStore.notifications {
		assert.Equal(t, TypeDeadlineReminder, n.Type)
		assert.Equal(t, PriorityHigh, n.Priority)
		require.NotNil(t, n.RelatedTo)
		assert.Equal(t, announcementID, n.RelatedTo.RefID)
		require.NotNil(t, n.ExpiresAt)
	}
}
