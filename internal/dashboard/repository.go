package dashboard

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusCount is one bucket of a $group aggregation.
type StatusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

// GuideWorkload is the number of projects assigned per guide.
type GuideWorkload struct {
	GuideID primitive.ObjectID `bson:"_id" json:"guide_id"`
	Count   int64              `bson:"count" json:"count"`
}

// DashboardRepository runs the read-only aggregate queries behind the
// role-scoped dashboards.
type DashboardRepository struct {
	projects      *mongo.Collection
	documents     *mongo.Collection
	milestones    *mongo.Collection
	accounts      *mongo.Collection
	notifications *mongo.Collection
}

func NewDashboardRepository(db *mongo.Database) *DashboardRepository {
	return &DashboardRepository{
		projects:      db.Collection("projects"),
		documents:     db.Collection("documents"),
		milestones:    db.Collection("milestones"),
		accounts:      db.Collection("accounts"),
		notifications: db.Collection("notifications"),
	}
}

func (r *DashboardRepository) ProjectCountsByStatus(ctx context.Context) ([]StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.projects.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var counts []StatusCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// GuideWorkloads groups assigned projects per guide, skipping unassigned
// projects.
func (r *DashboardRepository) GuideWorkloads(ctx context.Context) ([]GuideWorkload, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"guide_id": bson.M{"$exists": true, "$ne": primitive.NilObjectID}}}},
		{{Key: "$group", Value: bson.M{"_id": "$guide_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.projects.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var workloads []GuideWorkload
	if err := cursor.All(ctx, &workloads); err != nil {
		return nil, err
	}
	return workloads, nil
}

func (r *DashboardRepository) CountAccountsByRole(ctx context.Context, role string) (int64, error) {
	return r.accounts.CountDocuments(ctx, bson.M{"role": role, "is_active": true})
}

// RecentProjects returns the newest n projects as raw documents for the
// dashboard list.
func (r *DashboardRepository) RecentProjects(ctx context.Context, n int64) ([]bson.M, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(n)
	cursor, err := r.projects.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var projects []bson.M
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *DashboardRepository) CountGuidedProjects(ctx context.Context, guideID primitive.ObjectID) (int64, error) {
	return r.projects.CountDocuments(ctx, bson.M{"guide_id": guideID})
}

// CountPendingReviews counts documents awaiting review across a guide's
// projects.
func (r *DashboardRepository) CountPendingReviews(ctx context.Context, guideID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"review_status": "Pending"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "projects",
			"localField":   "project_id",
			"foreignField": "_id",
			"as":           "project",
		}}},
		{{Key: "$unwind", Value: "$project"}},
		{{Key: "$match", Value: bson.M{"project.guide_id": guideID}}},
		{{Key: "$count", Value: "count"}},
	}
	cursor, err := r.documents.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var result []struct {
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Count, nil
}

func (r *DashboardRepository) StudentProject(ctx context.Context, studentID primitive.ObjectID) (bson.M, error) {
	var project bson.M
	err := r.projects.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return project, nil
}

func (r *DashboardRepository) CountStudentDocuments(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	return r.documents.CountDocuments(ctx, bson.M{"student_id": studentID})
}

// UpcomingMilestones returns a student's open milestones due within the next
// seven days.
func (r *DashboardRepository) UpcomingMilestones(ctx context.Context, studentID primitive.ObjectID, now time.Time) ([]bson.M, error) {
	filter := bson.M{
		"student_id": studentID,
		"status":     bson.M{"$ne": "Completed"},
		"due_date":   bson.M{"$gte": now, "$lt": now.AddDate(0, 0, 7)},
	}
	cursor, err := r.milestones.Find(ctx, filter, options.Find().SetSort(bson.M{"due_date": 1}))
	if err != nil {
		return nil, err
	}
	var milestones []bson.M
	if err := cursor.All(ctx, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *DashboardRepository) CountUnreadNotifications(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.notifications.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}
