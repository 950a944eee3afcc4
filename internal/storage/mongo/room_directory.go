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

type roomDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
}

// RoomDirectory creates and resolves named rooms with uniqueness by name.
type RoomDirectory struct {
	col *mongo.Collection
}

func NewRoomDirectory(db *mongo.Database) (*RoomDirectory, error) {
	col := db.Collection("rooms")
	_, err := col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure room index: %w", err)
	}
	return &RoomDirectory{col: col}, nil
}

func (d *RoomDirectory) Create(ctx context.Context, name string) (*domain.Room, error) {
	room := domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := d.col.InsertOne(ctx, roomDoc{ID: string(room.ID), Name: room.Name, CreatedAt: room.CreatedAt})
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrRoomExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return &room, nil
}

func (d *RoomDirectory) List(ctx context.Context) ([]domain.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := d.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	defer cur.Close(ctx)

	var docs []roomDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toRoom(doc))
	}
	return out, nil
}

func (d *RoomDirectory) Resolve(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var doc roomDoc
	err := d.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	room := toRoom(doc)
	return &room, nil
}

func toRoom(doc roomDoc) domain.Room {
	return domain.Room{ID: domain.RoomID(doc.ID), Name: doc.Name, CreatedAt: doc.CreatedAt.UTC()}
}
