package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"stockwatch/internal/model"
)

const userCollection = "user"

var objectIDHex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// MongoUserStore resolves users from the auth system's collection. User
// documents carry an application-level `id` field; older documents are
// keyed only by their Mongo `_id`.
type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection(userCollection)}
}

type userDoc struct {
	OID   primitive.ObjectID `bson:"_id,omitempty"`
	ID    string             `bson:"id,omitempty"`
	Email string             `bson:"email,omitempty"`
	Name  string             `bson:"name,omitempty"`
}

func (s *MongoUserStore) GetByID(ctx context.Context, userID string) (*model.User, error) {
	var doc userDoc
	err := s.col.FindOne(ctx, bson.M{"id": userID}).Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) && objectIDHex.MatchString(userID) {
		oid, oidErr := primitive.ObjectIDFromHex(userID)
		if oidErr == nil {
			err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
		}
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	if doc.Email == "" {
		return nil, fmt.Errorf("user %s has no email: %w", userID, ErrNotFound)
	}

	id := doc.ID
	if id == "" {
		id = doc.OID.Hex()
	}
	name := doc.Name
	if name == "" {
		name = "Investor"
	}
	return &model.User{ID: id, Email: doc.Email, Name: name}, nil
}
