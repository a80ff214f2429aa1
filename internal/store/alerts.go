package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stockwatch/internal/model"
)

const alertCollection = "alerts"

// MongoAlertStore implements AlertStore on a MongoDB collection.
type MongoAlertStore struct {
	col *mongo.Collection
}

func NewMongoAlertStore(db *mongo.Database) *MongoAlertStore {
	return &MongoAlertStore{col: db.Collection(alertCollection)}
}

func (s *MongoAlertStore) Create(ctx context.Context, a *model.Alert) error {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.IsActive = true
	a.IsTriggered = false
	a.TriggeredAt = nil

	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *MongoAlertStore) ListEligible(ctx context.Context) ([]model.Alert, error) {
	return s.find(ctx, bson.M{"isActive": true, "isTriggered": false}, nil)
}

func (s *MongoAlertStore) ListByUser(ctx context.Context, userID string) ([]model.Alert, error) {
	return s.find(ctx, bson.M{"userId": userID}, newestFirst())
}

func (s *MongoAlertStore) ListBySymbol(ctx context.Context, userID, symbol string) ([]model.Alert, error) {
	filter := bson.M{"userId": userID, "symbol": strings.ToUpper(symbol)}
	return s.find(ctx, filter, newestFirst())
}

func (s *MongoAlertStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Alert, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.col.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("find alerts: %w", err)
	}
	defer cur.Close(ctx)

	var alerts []model.Alert
	if err := cur.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	return alerts, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// MarkTriggered performs the one-way eligible→triggered transition. The
// filter repeats the eligibility predicate so that a concurrent pass that
// already triggered the alert cannot flip it twice.
func (s *MongoAlertStore) MarkTriggered(ctx context.Context, alertID string) (*model.Alert, error) {
	now := time.Now()
	filter := bson.M{"_id": alertID, "isActive": true, "isTriggered": false}
	update := bson.M{"$set": bson.M{
		"isTriggered": true,
		"isActive":    false,
		"triggeredAt": now,
		"updatedAt":   now,
	}}

	var updated model.Alert
	err := s.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("mark triggered %s: %w", alertID, err)
	}

	// No eligible document matched: distinguish a missing alert from one
	// that was already triggered elsewhere.
	n, countErr := s.col.CountDocuments(ctx, bson.M{"_id": alertID})
	if countErr != nil {
		return nil, fmt.Errorf("mark triggered %s: %w", alertID, countErr)
	}
	if n == 0 {
		return nil, fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}
	return nil, fmt.Errorf("alert %s: %w", alertID, ErrAlreadyTriggered)
}
