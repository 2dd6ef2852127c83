package project

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProjectRepository handles DB operations for projects, documents, milestones
// and teams.
type ProjectRepository struct {
	projects   *mongo.Collection
	documents  *mongo.Collection
	milestones *mongo.Collection
	teams      *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{
		projects:   db.Collection("projects"),
		documents:  db.Collection("documents"),
		milestones: db.Collection("milestones"),
		teams:      db.Collection("teams"),
	}
}

// Project operations

func (r *ProjectRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.projects.InsertOne(ctx, p)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Unique index on student_id: one project per student.
		return ErrProjectExists
	}
	return err
}

func (r *ProjectRepository) FindProjectByID(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	var p Project
	err := r.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) FindProjectByStudent(ctx context.Context, studentID primitive.ObjectID) (*Project, error) {
	var p Project
	err := r.projects.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) ReplaceProject(ctx context.Context, p *Project) error {
	res, err := r.projects.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) ListProjects(ctx context.Context, filter bson.M) ([]*Project, error) {
	cursor, err := r.projects.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var projects []*Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) ListByGuide(ctx context.Context, guideID primitive.ObjectID) ([]*Project, error) {
	return r.ListProjects(ctx, bson.M{"guide_id": guideID})
}

// Document operations

func (r *ProjectRepository) CreateDocument(ctx context.Context, d *Document) error {
	_, err := r.documents.InsertOne(ctx, d)
	return err
}

func (r *ProjectRepository) FindDocumentByID(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	var d Document
	err := r.documents.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *ProjectRepository) ReplaceDocument(ctx context.Context, d *Document) error {
	res, err := r.documents.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) ListDocumentsByProject(ctx context.Context, projectID primitive.ObjectID) ([]*Document, error) {
	cursor, err := r.documents.Find(ctx, bson.M{"project_id": projectID}, options.Find().SetSort(bson.M{"uploaded_at": -1}))
	if err != nil {
		return nil, err
	}
	var documents []*Document
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}
	return documents, nil
}

// Milestone operations

func (r *ProjectRepository) CreateMilestone(ctx context.Context, m *Milestone) error {
	_, err := r.milestones.InsertOne(ctx, m)
	return err
}

func (r *ProjectRepository) FindMilestoneByID(ctx context.Context, id primitive.ObjectID) (*Milestone, error) {
	var m Milestone
	err := r.milestones.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *ProjectRepository) ReplaceMilestone(ctx context.Context, m *Milestone) error {
	res, err := r.milestones.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) ListMilestonesByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*Milestone, error) {
	cursor, err := r.milestones.Find(ctx, bson.M{"student_id": studentID}, options.Find().SetSort(bson.M{"due_date": 1}))
	if err != nil {
		return nil, err
	}
	var milestones []*Milestone
	if err := cursor.All(ctx, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

// Team operations

func (r *ProjectRepository) CreateTeam(ctx context.Context, t *Team) error {
	_, err := r.teams.InsertOne(ctx, t)
	return err
}

func (r *ProjectRepository) FindTeamByID(ctx context.Context, id primitive.ObjectID) (*Team, error) {
	var t Team
	err := r.teams.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *ProjectRepository) ListTeamsForMember(ctx context.Context, memberID primitive.ObjectID) ([]*Team, error) {
	cursor, err := r.teams.Find(ctx, bson.M{"member_ids": memberID})
	if err != nil {
		return nil, err
	}
	var teams []*Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}
