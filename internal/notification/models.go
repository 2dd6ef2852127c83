package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification event kinds. The set is closed; handlers and the frontend
// switch on these values.
const (
	TypeProjectSubmitted  = "PROJECT_SUBMITTED"
	TypeProjectApproved   = "PROJECT_APPROVED"
	TypeProjectRejected   = "PROJECT_REJECTED"
	TypeGuideAssigned     = "GUIDE_ASSIGNED"
	TypeDocumentSubmitted = "DOCUMENT_SUBMITTED"
	TypeDocumentReviewed  = "DOCUMENT_REVIEWED"
	TypeMilestoneAssigned = "MILESTONE_ASSIGNED"
	TypeMilestoneDueSoon  = "MILESTONE_DUE_SOON"
	TypeMilestoneOverdue  = "MILESTONE_OVERDUE"
	TypeTeamCreated       = "TEAM_CREATED"
	TypeTeamUpdated       = "TEAM_UPDATED"
	TypeMessageReceived   = "MESSAGE_RECEIVED"
	TypeAnnouncement      = "ANNOUNCEMENT_POSTED"
	TypeMarksAssigned     = "MARKS_ASSIGNED"
	TypeDeadlineReminder  = "DEADLINE_REMINDER"
	TypeGeneral           = "GENERAL"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Kinds a RelatedRef may point into.
const (
	RefProject      = "project"
	RefDocument     = "document"
	RefMilestone    = "milestone"
	RefTeam         = "team"
	RefMessage      = "message"
	RefAnnouncement = "announcement"
)

// RelatedRef is a tagged reference into one of the domain collections. The
// kind selects the collection; resolution goes through an explicit per-kind
// lookup rather than a dynamically dispatched one.
type RelatedRef struct {
	Kind  string             `bson:"kind" json:"kind"`
	RefID primitive.ObjectID `bson:"ref_id" json:"ref_id"`
}

// Notification is an in-app message for exactly one account. ReadAt is set
// iff IsRead is true; the mark-read operation maintains that together.
// ExpiresAt, when set, makes the record eligible for TTL deletion.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	RelatedTo *RelatedRef        `bson:"related_to,omitempty" json:"related_to,omitempty"`
	Related   *RefTarget         `bson:"-" json:"related,omitempty"` // Filled on demand by HydrateRelated, never stored
	IsRead    bool               `bson:"is_read" json:"is_read"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
	Priority  string             `bson:"priority" json:"priority"`
	ActionURL string             `bson:"action_url,omitempty" json:"action_url,omitempty"`
	ExpiresAt *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
