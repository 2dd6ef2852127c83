package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memRefStore answers per-kind lookups from fixed targets.
type memRefStore struct {
	targets map[string]map[primitive.ObjectID]*RefTarget
	err     error
}

func (s *memRefStore) lookup(kind string, id primitive.ObjectID) (*RefTarget, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.targets[kind][id], nil
}

func (s *memRefStore) ProjectRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	return s.lookup(RefProject, id)
}

func (s *memRefStore) DocumentRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	return s.lookup(RefDocument, id)
}

func (s *memRefStore) MilestoneRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	return s.lookup(RefMilestone, id)
}

func (s *memRefStore) TeamRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	return s.lookup(RefTeam, id)
}

func (s *memRefStore) MessageRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	return s.lookup(RefMessage, id)
}

func (s *memRefStore) AnnouncementRef(ctx context.Context, id primitive.ObjectID) (*RefTarget, error) {
	return s.lookup(RefAnnouncement, id)
}

func newRefStoreWith(targets ...*RefTarget) *memRefStore {
	s := &memRefStore{targets: map[string]map[primitive.ObjectID]*RefTarget{}}
	for _, t := range targets {
		if s.targets[t.Kind] == nil {
			s.targets[t.Kind] = map[primitive.ObjectID]*RefTarget{}
		}
		s.targets[t.Kind][t.ID] = t
	}
	return s
}

func TestResolveRefPerKind(t *testing.T) {
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	targets := []*RefTarget{
		{Kind: RefProject, ID: primitive.NewObjectID(), Title: "AI Chatbot", Status: "Approved"},
		{Kind: RefDocument, ID: primitive.NewObjectID(), Title: "Design Doc", Status: "Pending"},
		{Kind: RefMilestone, ID: primitive.NewObjectID(), Title: "Literature Review", Status: "Pending", DueDate: &due},
		{Kind: RefTeam, ID: primitive.NewObjectID(), Title: "Team Alpha"},
		{Kind: RefMessage, ID: primitive.NewObjectID(), Title: "Doubt about milestone"},
		{Kind: RefAnnouncement, ID: primitive.NewObjectID(), Title: "Abstract submission", Status: "Deadline"},
	}
	resolver := &RefResolver{store: newRefStoreWith(targets...)}

	for _, want := range targets {
		t.Run(want.Kind, func(t *testing.T) {
			got, err := resolver.ResolveRef(context.Background(), &RelatedRef{Kind: want.Kind, RefID: want.ID})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, want, got)
		})
	}
}

func TestResolveRefNilAndUnknown(t *testing.T) {
	resolver := &RefResolver{store: newRefStoreWith()}

	got, err := resolver.ResolveRef(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = resolver.ResolveRef(context.Background(), &RelatedRef{Kind: "exam", RefID: primitive.NewObjectID()})
	require.EqualError(t, err, `unknown reference kind "exam"`)
}

func TestResolveRefMissingTarget(t *testing.T) {
	resolver := &RefResolver{store: newRefStoreWith()}

	got, err := resolver.ResolveRef(context.Background(), &RelatedRef{Kind: RefProject, RefID: primitive.NewObjectID()})

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHydrateRelated(t *testing.T) {
	projectID := primitive.NewObjectID()
	target := &RefTarget{Kind: RefProject, ID: projectID, Title: "AI Chatbot", Status: "Approved"}
	resolver := &RefResolver{store: newRefStoreWith(target)}
	ns := []*Notification{
		{ID: primitive.NewObjectID(), Type: TypeProjectApproved, RelatedTo: &RelatedRef{Kind: RefProject, RefID: projectID}},
		{ID: primitive.NewObjectID(), Type: TypeGeneral},
		{ID: primitive.NewObjectID(), Type: TypeProjectApproved, RelatedTo: &RelatedRef{Kind: RefProject, RefID: primitive.NewObjectID()}},
	}

	HydrateRelated(context.Background(), resolver, ns)

	assert.Equal(t, target, ns[0].Related)
	assert.Nil(t, ns[1].Related)
	assert.Nil(t, ns[2].Related)
}

func TestHydrateRelatedSkipsFailures(t *testing.T) {
	resolver := &RefResolver{store: &memRefStore{err: errors.New("db down")}}
	ns := []*Notification{
		{ID: primitive.NewObjectID(), Type: TypeProjectApproved, RelatedTo: &RelatedRef{Kind: RefProject, RefID: primitive.NewObjectID()}},
	}

	HydrateRelated(context.Background(), resolver, ns)

	assert.Nil(t, ns[0].Related)
}
