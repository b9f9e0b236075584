package store

import (
	"context"
	"fmt"
	"sync"

	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoVerificationLog struct {
	coll *mongo.Collection
}

func NewMongoVerificationLog(coll *mongo.Collection) *MongoVerificationLog {
	return &MongoVerificationLog{coll: coll}
}

func (l *MongoVerificationLog) Append(ctx context.Context, v *models.Verification) error {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if _, err := l.coll.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (l *MongoVerificationLog) ListByReport(ctx context.Context, reportID string) ([]*models.Verification, error) {
	oid, err := parseID(reportID, "report")
	if err != nil {
		return nil, err
	}
	cursor, err := l.coll.Find(ctx, bson.M{"report": oid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find verifications: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]*models.Verification, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode verifications: %w", err)
	}
	return out, nil
}

type MemoryVerificationLog struct {
	mu      sync.Mutex
	entries []models.Verification
}

func NewMemoryVerificationLog() *MemoryVerificationLog {
	return &MemoryVerificationLog{}
}

func (l *MemoryVerificationLog) Append(_ context.Context, v *models.Verification) error {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *v)
	return nil
}

// ListByReport returns entries in insertion order.
func (l *MemoryVerificationLog) ListByReport(_ context.Context, reportID string) ([]*models.Verification, error) {
	oid, err := parseID(reportID, "report")
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*models.Verification, 0)
	for i := range l.entries {
		if l.entries[i].Report == oid {
			v := l.entries[i]
			out = append(out, &v)
		}
	}
	return out, nil
}
