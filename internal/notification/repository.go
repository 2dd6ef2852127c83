package notification

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles DB operations for notifications.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection("notifications")}
}

func (r *NotificationRepository) Create(ctx context.Context, n *Notification) error {
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// CreateMany bulk-inserts a fan-out batch. Partial failure behavior is the
// driver's: an ordered insert stops at the first failing document.
func (r *NotificationRepository) CreateMany(ctx context.Context, ns []*Notification) error {
	if len(ns) == 0 {
		return nil
	}
	docs := make([]interface{}, len(ns))
	for i, n := range ns {
		docs[i] = n
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *NotificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Notification, error) {
	var n Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// ListForUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

// HasUnreadOfType reports whether an unread notification of the given type
// already references refID for this user. The reminder sweep uses it to stay
// idempotent across runs.
func (r *NotificationRepository) HasUnreadOfType(ctx context.Context, userID primitive.ObjectID, notifType string, refID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"user_id":           userID,
		"type":              notifType,
		"is_read":           false,
		"related_to.ref_id": refID,
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	return count > 0, err
}

// MarkRead sets is_read and read_at together. Marking an already-read
// notification is a no-op so read_at keeps its original value.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*Notification, error) {
	now := time.Now().UTC()
	filter := bson.M{"_id": id, "user_id": userID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": now}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		// Already read, or not this user's notification - distinguish below.
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.UserID != userID {
			return nil, ErrNotFound
		}
		return existing, nil
	}
	return r.FindByID(ctx, id)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now().UTC()
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRead removes all of a user's read notifications.
func (r *NotificationRepository) ClearRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "is_read": true})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

var ErrNotFound = errors.New("notification not found")
