package communication

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

type CommunicationRepository struct {
	messages      *mongo.Collection
	announcements *mongo.Collection
}

func NewCommunicationRepository(db *mongo.Database) *CommunicationRepository {
	return &CommunicationRepository{
		messages:      db.Collection("messages"),
		announcements: db.Collection("announcements"),
	}
}

func (r *CommunicationRepository) CreateMessage(ctx context.Context, m *Message) error {
	_, err := r.messages.InsertOne(ctx, m)
	return err
}

func (r *CommunicationRepository) FindMessageByID(ctx context.Context, id primitive.ObjectID) (*Message, error) {
	var m Message
	err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Inbox returns messages received by the user, excluding the ones the user
// has hidden.
func (r *CommunicationRepository) Inbox(ctx context.Context, userID primitive.ObjectID) ([]*Message, error) {
	filter := bson.M{"receiver_id": userID, "deleted_for": bson.M{"$ne": userID}}
	return r.listMessages(ctx, filter)
}

func (r *CommunicationRepository) Sent(ctx context.Context, userID primitive.ObjectID) ([]*Message, error) {
	filter := bson.M{"sender_id": userID, "deleted_for": bson.M{"$ne": userID}}
	return r.listMessages(ctx, filter)
}

func (r *CommunicationRepository) listMessages(ctx context.Context, filter bson.M) ([]*Message, error) {
	cursor, err := r.messages.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkMessageRead sets is_read and read_at together; only the receiver may
// read-mark, and re-marking is a no-op.
func (r *CommunicationRepository) MarkMessageRead(ctx context.Context, id, receiverID primitive.ObjectID) (*Message, error) {
	now := time.Now().UTC()
	res, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": id, "receiver_id": receiverID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		existing, err := r.FindMessageByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.ReceiverID != receiverID {
			return nil, ErrNotFound
		}
		return existing, nil
	}
	return r.FindMessageByID(ctx, id)
}

// HideMessage appends the party to deleted_for. Either party may hide; the
// other party's view is unaffected.
func (r *CommunicationRepository) HideMessage(ctx context.Context, id, partyID primitive.ObjectID) error {
	filter := bson.M{
		"_id": id,
		"$or": []bson.M{{"sender_id": partyID}, {"receiver_id": partyID}},
	}
	res, err := r.messages.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{"deleted_for": partyID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CommunicationRepository) CreateAnnouncement(ctx context.Context, a *Announcement) error {
	_, err := r.announcements.InsertOne(ctx, a)
	return err
}

// ListAnnouncementsFor returns active announcements visible to an audience
// bucket, newest first.
func (r *CommunicationRepository) ListAnnouncementsFor(ctx context.Context, audience string) ([]*Announcement, error) {
	filter := bson.M{"is_active": true}
	if audience != "" {
		filter["target_audience"] = bson.M{"$in": []string{AudienceAll, audience}}
	}
	cursor, err := r.announcements.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var announcements []*Announcement
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

// DeactivateAnnouncement flips is_active off; announcements are never
// hard-deleted.
func (r *CommunicationRepository) DeactivateAnnouncement(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.announcements.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
