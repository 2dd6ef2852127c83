package auth

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AccountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{collection: db.Collection("accounts")}
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*Account, error) {
	var account Account
	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByRegNo(ctx context.Context, regNo string) (*Account, error) {
	return r.findOne(ctx, bson.M{"reg_no": regNo})
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account *Account) error {
	_, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New("email or registration number already registered")
		}
		return err
	}
	return nil
}

func (r *AccountRepository) UpdateAccount(ctx context.Context, account *Account) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": account.ID}, account)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("account not found")
	}
	return nil
}

// ListByRole returns active accounts for a role; it is the audience resolver
// used by announcement fan-out and the reminder sweep.
func (r *AccountRepository) ListByRole(ctx context.Context, roles ...string) ([]*Account, error) {
	filter := bson.M{"role": bson.M{"$in": roles}, "is_active": true}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	var accounts []*Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
