package project

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project workflow status.
const (
	StatusDraft      = "Draft"
	StatusSubmitted  = "Submitted"
	StatusApproved   = "Approved"
	StatusRejected   = "Rejected"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
)

// Approval status, set by the guide's review action. Kept as a separate field
// from the workflow status; the two are updated together.
const (
	ApprovalPending  = "Pending"
	ApprovalApproved = "Approved"
	ApprovalRejected = "Rejected"
)

// Document review outcomes.
const (
	ReviewPending       = "Pending"
	ReviewApproved      = "Approved"
	ReviewRejected      = "Rejected"
	ReviewNeedsRevision = "NeedsRevision"
)

// Milestone status.
const (
	MilestonePending    = "Pending"
	MilestoneInProgress = "InProgress"
	MilestoneCompleted  = "Completed"
)

type Project struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	StudentID      primitive.ObjectID `bson:"student_id" json:"student_id"`
	GuideID        primitive.ObjectID `bson:"guide_id,omitempty" json:"guide_id,omitempty"`
	Status         string             `bson:"status" json:"status"`
	ApprovalStatus string             `bson:"approval_status" json:"approval_status"`
	Remarks        string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	SubmittedAt    *time.Time         `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	DecidedAt      *time.Time         `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// Document carries file metadata only; content lives outside this system.
type Document struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID      primitive.ObjectID `bson:"project_id" json:"project_id"`
	StudentID      primitive.ObjectID `bson:"student_id" json:"student_id"`
	Title          string             `bson:"title" json:"title"`
	FileName       string             `bson:"file_name" json:"file_name"`
	FilePath       string             `bson:"file_path" json:"file_path"`
	FileSize       int64              `bson:"file_size" json:"file_size"`
	ReviewStatus   string             `bson:"review_status" json:"review_status"`
	ReviewComments string             `bson:"review_comments,omitempty" json:"review_comments,omitempty"`
	ReviewedBy     primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time         `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	UploadedAt     time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}

type Milestone struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"student_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	DueDate     time.Time          `bson:"due_date" json:"due_date"`
	Status      string             `bson:"status" json:"status"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

type Team struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	ProjectID primitive.ObjectID   `bson:"project_id,omitempty" json:"project_id,omitempty"`
	MemberIDs []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	GuideID   primitive.ObjectID   `bson:"guide_id,omitempty" json:"guide_id,omitempty"`
	CreatedBy primitive.ObjectID   `bson:"created_by" json:"created_by"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}

type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DecisionRequest struct {
	Remarks string `json:"remarks"`
}

type AssignGuideRequest struct {
	ProjectID string `json:"project_id"`
	GuideID   string `json:"guide_id"`
}

type UploadDocumentRequest struct {
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

type ReviewDocumentRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
}

type CreateMilestoneRequest struct {
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
}

type UpdateMilestoneStatusRequest struct {
	Status string `json:"status"`
}

type CreateTeamRequest struct {
	Name      string   `json:"name"`
	ProjectID string   `json:"project_id"`
	MemberIDs []string `json:"member_ids"`
}
