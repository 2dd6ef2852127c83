package notification

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RefTarget is the resolved summary of the entity behind a RelatedRef:
// enough to label and link the notification, never the full document.
type RefTarget struct {
	Kind    string             `json:"kind"`
	ID      primitive.ObjectID `json:"id"`
	Title   string             `json:"title"`
	Status  string             `json:"status,omitempty"`
	DueDate *time.Time         `json:"due_date,omitempty"`
}

type refStore interface {
	ProjectRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error)
	DocumentRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error)
	MilestoneRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error)
	TeamRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error)
	MessageRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error)
	AnnouncementRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error)
}

// RefRepository reads the referenced collections directly, decoding only the
// summary fields a RefTarget carries.
type RefRepository struct {
	projects      *mongo.Collection
	documents     *mongo.Collection
	milestones    *mongo.Collection
	teams         *mongo.Collection
	messages      *mongo.Collection
	announcements *mongo.Collection
}

func NewRefRepository(db *mongo.Database) *RefRepository {
	return &RefRepository{
		projects:      db.Collection("projects"),
		documents:     db.Collection("documents"),
		milestones:    db.Collection("milestones"),
		teams:         db.Collection("teams"),
		messages:      db.Collection("messages"),
		announcements: db.Collection("announcements"),
	}
}

func (r *RefRepository) ProjectRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	var row struct {
		Title  string `bson:"title"`
		Status string `bson:"status"`
	}
	if found, err := decodeRef(ctx, r.projects, id, &row); !found {
		return nil, err
	}
	return &RefTarget{Kind: RefProject, ID: id, Title: row.Title, Status: row.Status}, nil
}

func (r *RefRepository) DocumentRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	var row struct {
		Title        string `bson:"title"`
		ReviewStatus string `bson:"review_status"`
	}
	if found, err := decodeRef(ctx, r.documents, id, &row); !found {
		return nil, err
	}
	return &RefTarget{Kind: RefDocument, ID: id, Title: row.Title, Status: row.ReviewStatus}, nil
}

func (r *RefRepository) MilestoneRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	var row struct {
		Title   string    `bson:"title"`
		Status  string    `bson:"status"`
		DueDate time.Time `bson:"due_date"`
	}
	if found, err := decodeRef(ctx, r.milestones, id, &row); !found {
		return nil, err
	}
	due := row.DueDate
	return &RefTarget{Kind: RefMilestone, ID: id, Title: row.Title, Status: row.Status, DueDate: &due}, nil
}

func (r *RefRepository) TeamRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	var row struct {
		Name string `bson:"name"`
	}
	if found, err := decodeRef(ctx, r.teams, id, &row); !found {
		return nil, err
	}
	return &RefTarget{Kind: RefTeam, ID: id, Title: row.Name}, nil
}

func (r *RefRepository) MessageRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	var row struct {
		Subject string `bson:"subject"`
	}
	if found, err := decodeRef(ctx, r.messages, id, &row); !found {
		return nil, err
	}
	return &RefTarget{Kind: RefMessage, ID: id, Title: row.Subject}, nil
}

func (r *RefRepository) AnnouncementRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	var row struct {
		Title    string     `bson:"title"`
		Type     string     `bson:"type"`
		Deadline *time.Time `bson:"deadline"`
	}
	if found, err := decodeRef(ctx, r.announcements, id, &row); !found {
		return nil, err
	}
	return &RefTarget{Kind: RefAnnouncement, ID: id, Title: row.Title, Status: row.Type, DueDate: row.Deadline}, nil
}

func decodeRef(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, row interface{}) (bool, error) {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(row)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RefResolver resolves a RelatedRef to its target entity, one lookup per
// reference kind.
type RefResolver struct {
	store refStore
}

func NewRefResolver(repo *RefRepository) *RefResolver {
	return &RefResolver{store: repo}
}

// ResolveRef returns the target summary for a reference, (nil, nil) when the
// reference is absent or its target no longer exists.
func (r *RefResolver) ResolveRef(ctx context.Context, ref *RelatedRef) (*RefTarget, error) {
	if ref == nil {
		return nil, nil
	}
	switch ref.Kind {
	case RefProject:
		return r.store.ProjectRef(ctx, ref.RefID)
	case RefDocument:
		return r.store.DocumentRef(ctx, ref.RefID)
	case RefMilestone:
		return r.store.MilestoneRef(ctx, ref.RefID)
	case RefTeam:
		return r.store.TeamRef(ctx, ref.RefID)
	case RefMessage:
		return r.store.MessageRef(ctx, ref.RefID)
	case RefAnnouncement:
		return r.store.AnnouncementRef(ctx, ref.RefID)
	default:
		return nil, fmt.Errorf("unknown reference kind %q", ref.Kind)
	}
}

// HydrateRelated fills each notification's Related field in place. A
// reference whose target is gone or fails to resolve stays nil; hydration is
// a read-side convenience and never fails the listing.
func HydrateRelated(ctx context.Context, resolver *RefResolver, ns []*Notification) {
	for _, n := range ns {
		if n.RelatedTo == nil {
			continue
		}
		target, err := resolver.ResolveRef(ctx, n.RelatedTo)
		if err != nil {
			continue
		}
		n.Related = target
	}
}
