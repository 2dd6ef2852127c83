package communication

import (
	"ProjectTracker/internal/notification"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement types.
const (
	AnnouncementGeneral   = "General"
	AnnouncementDeadline  = "Deadline"
	AnnouncementImportant = "Important"
	AnnouncementEvent     = "Event"
)

// Announcement audiences.
const (
	AudienceAll      = "All"
	AudienceStudents = "Students"
	AudienceStaff    = "Staff"
)

// Attachment is file metadata riding along with a message; no content.
type Attachment struct {
	FileName string `bson:"file_name" json:"file_name"`
	FilePath string `bson:"file_path" json:"file_path"`
	FileSize int64  `bson:"file_size" json:"file_size"`
}

// Message is a directed, two-party message. With the unified accounts
// collection both parties are plain account ids. Deletion is hide-for-this-
// party: DeletedFor collects the ids of parties who removed it from their
// view; the record itself stays.
type Message struct {
	ID          primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	SenderID    primitive.ObjectID       `bson:"sender_id" json:"sender_id"`
	ReceiverID  primitive.ObjectID       `bson:"receiver_id" json:"receiver_id"`
	Subject     string                   `bson:"subject" json:"subject"`
	Body        string                   `bson:"body" json:"body"`
	RelatedTo   *notification.RelatedRef `bson:"related_to,omitempty" json:"related_to,omitempty"`
	IsRead      bool                     `bson:"is_read" json:"is_read"`
	ReadAt      *time.Time               `bson:"read_at,omitempty" json:"read_at,omitempty"`
	Priority    string                   `bson:"priority" json:"priority"`
	Attachments []Attachment             `bson:"attachments,omitempty" json:"attachments,omitempty"`
	DeletedFor  []primitive.ObjectID     `bson:"deleted_for,omitempty" json:"-"`
	CreatedAt   time.Time                `bson:"created_at" json:"created_at"`
}

// Announcement is soft-deleted only: IsActive flips to false, the record is
// never removed.
type Announcement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Message        string             `bson:"message" json:"message"`
	Type           string             `bson:"type" json:"type"`
	CreatedBy      primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatorRole    string             `bson:"creator_role" json:"creator_role"`
	TargetAudience string             `bson:"target_audience" json:"target_audience"`
	Deadline       *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

type SendMessageRequest struct {
	ReceiverID  string       `json:"receiver_id"`
	Subject     string       `json:"subject"`
	Message     string       `json:"message"`
	Priority    string       `json:"priority"`
	Attachments []Attachment `json:"attachments"`
}

type CreateAnnouncementRequest struct {
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Type           string     `json:"type"`
	TargetAudience string     `json:"target_audience"`
	Deadline       *time.Time `json:"deadline"`
}
