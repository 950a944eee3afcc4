package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jsorel/chatter/internal/domain"
)

type messageDoc struct {
	ID       string    `bson:"_id"`
	Room     string    `bson:"room_id"`
	UserID   string    `bson:"user_id"`
	Username string    `bson:"username"`
	Content  string    `bson:"content"`
	SentAt   time.Time `bson:"sent_at"`
}

// MessageStore is the append-only chat log, keyed by room and queried in
// chronological order.
type MessageStore struct {
	col *mongo.Collection
}

// NewMessageStore ensures the (room_id, sent_at) index history reads scan.
func NewMessageStore(db *mongo.Database) (*MessageStore, error) {
	col := db.Collection("messages")
	_, err := col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "sent_at", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure message index: %w", err)
	}
	return &MessageStore{col: col}, nil
}

// Persist appends the message and assigns its stored identifier.
func (s *MessageStore) Persist(ctx context.Context, msg domain.Message) (domain.Message, error) {
	msg.ID = uuid.NewString()
	if _, err := s.col.InsertOne(ctx, fromMessage(msg)); err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// History returns at most limit of the room's messages in ascending
// timestamp order.
func (s *MessageStore) History(ctx context.Context, room domain.RoomID, limit int64) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: 1}}).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, bson.M{"room_id": string(room)}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, toMessage(d))
	}
	return out, nil
}

func fromMessage(m domain.Message) messageDoc {
	return messageDoc{
		ID:       m.ID,
		Room:     string(m.Room),
		UserID:   string(m.UserID),
		Username: m.Username,
		Content:  m.Content,
		SentAt:   m.SentAt,
	}
}

func toMessage(d messageDoc) domain.Message {
	return domain.Message{
		ID:       d.ID,
		Room:     domain.RoomID(d.Room),
		UserID:   domain.UserID(d.UserID),
		Username: d.Username,
		Content:  d.Content,
		SentAt:   d.SentAt.UTC(),
	}
}
