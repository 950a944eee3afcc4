package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jsorel/chatter/internal/domain"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// StoredUser pairs the public account with its password hash; only the auth
// handlers ever see the hash.
type StoredUser struct {
	User         domain.User
	PasswordHash string
}

type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) (*UserRepo, error) {
	col := db.Collection("users")
	_, err := col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user index: %w", err)
	}
	return &UserRepo{col: col}, nil
}

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	user := domain.User{ID: domain.UserID(uuid.NewString()), Username: username}
	doc := userDoc{
		ID:           string(user.ID),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*StoredUser, error) {
	var doc userDoc
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &StoredUser{
		User:         domain.User{ID: domain.UserID(doc.ID), Username: doc.Username},
		PasswordHash: doc.PasswordHash,
	}, nil
}
