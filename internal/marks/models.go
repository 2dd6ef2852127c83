package marks

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Component caps and the overall total.
const (
	MaxTitleMarks       = 5
	MaxProgressMarks    = 10
	MaxDocumentMarks    = 15
	MaxInteractionMarks = 5
	MaxFinalReviewMarks = 5
	MaxTotalMarks       = 40
)

// ProjectMarks is the evaluation record for one student/project pair. The
// pair is the upsert key; re-evaluation replaces, never duplicates.
type ProjectMarks struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID        primitive.ObjectID `bson:"student_id" json:"student_id"`
	ProjectID        primitive.ObjectID `bson:"project_id" json:"project_id"`
	TitleMarks       int                `bson:"title_marks" json:"title_marks"`
	ProgressMarks    int                `bson:"progress_marks" json:"progress_marks"`
	DocumentMarks    int                `bson:"document_marks" json:"document_marks"`
	InteractionMarks int                `bson:"interaction_marks" json:"interaction_marks"`
	FinalReviewMarks int                `bson:"final_review_marks" json:"final_review_marks"`
	TotalMarks       int                `bson:"total_marks" json:"total_marks"`
	Remarks          string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	EvaluatedBy      primitive.ObjectID `bson:"evaluated_by" json:"evaluated_by"`
	EvaluatedAt      time.Time          `bson:"evaluated_at" json:"evaluated_at"`
}

type AssignMarksRequest struct {
	StudentID        string `json:"student_id"`
	ProjectID        string `json:"project_id"`
	TitleMarks       int    `json:"title_marks"`
	ProgressMarks    int    `json:"progress_marks"`
	DocumentMarks    int    `json:"document_marks"`
	InteractionMarks int    `json:"interaction_marks"`
	FinalReviewMarks int    `json:"final_review_marks"`
	Remarks          string `json:"remarks"`
}
