package marks

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MarksRepository struct {
	collection *mongo.Collection
}

func NewMarksRepository(db *mongo.Database) *MarksRepository {
	return &MarksRepository{collection: db.Collection("project_marks")}
}

// Upsert replaces the evaluation for a student/project pair, creating it on
// first evaluation. The unique compound index on {student_id, project_id}
// backs the key.
func (r *MarksRepository) Upsert(ctx context.Context, m *ProjectMarks) (*ProjectMarks, error) {
	filter := bson.M{"student_id": m.StudentID, "project_id": m.ProjectID}
	update := bson.M{"$set": bson.M{
		"title_marks":        m.TitleMarks,
		"progress_marks":     m.ProgressMarks,
		"document_marks":     m.DocumentMarks,
		"interaction_marks":  m.InteractionMarks,
		"final_review_marks": m.FinalReviewMarks,
		"total_marks":        m.TotalMarks,
		"remarks":            m.Remarks,
		"evaluated_by":       m.EvaluatedBy,
		"evaluated_at":       m.EvaluatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var result ProjectMarks
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *MarksRepository) FindByStudentAndProject(ctx context.Context, studentID, projectID primitive.ObjectID) (*ProjectMarks, error) {
	var m ProjectMarks
	err := r.collection.FindOne(ctx, bson.M{"student_id": studentID, "project_id": projectID}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MarksRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*ProjectMarks, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"student_id": studentID})
	if err != nil {
		return nil, err
	}
	var records []*ProjectMarks
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
