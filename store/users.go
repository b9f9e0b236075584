package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"civicreport-be/apperrors"
	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var errEmailTaken = apperrors.Validation("User with this email already exists", nil)

type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(coll *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{coll: coll}
}

// Create relies on the unique email index to reject duplicates.
func (s *MongoUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u := *user
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = models.NormalizeEmail(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User", err)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[primitive.ObjectID]models.User
	byEmail map[string]primitive.ObjectID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[primitive.ObjectID]models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	u := *user
	u.Email = models.NormalizeEmail(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return nil, errEmailTaken
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return &u, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, apperrors.NotFound("User", nil)
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[oid]
	if !ok {
		return nil, apperrors.NotFound("User", nil)
	}
	return &u, nil
}
