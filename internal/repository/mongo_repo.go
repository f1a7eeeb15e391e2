package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/quote-chat/internal/apperr"
	"github.com/fathima-sithara/quote-chat/internal/models"
)

const opTimeout = 5 * time.Second

type MongoRepository struct {
	client   *mongo.Client
	chats    *mongo.Collection
	messages *mongo.Collection
}

// NewMongoRepository connects to MongoDB and initializes collections.
func NewMongoRepository(ctx context.Context, uri, dbName string) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	return &MongoRepository{
		client:   client,
		chats:    db.Collection("chats"),
		messages: db.Collection("messages"),
	}, nil
}

func (r *MongoRepository) Disconnect(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) CreateChat(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if chat.ID == "" {
		chat.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.chats.InsertOne(ctx, chat)
	return err
}

func (r *MongoRepository) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var chat models.Chat
	err := r.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *MongoRepository) ListChats(ctx context.Context) ([]models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.chats.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *MongoRepository) UpdateChat(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"first_name":      chat.FirstName,
		"last_name":       chat.LastName,
		"last_message_id": chat.LastMessageID,
		"updated_at":      chat.UpdatedAt,
	}}
	res, err := r.chats.UpdateOne(ctx, bson.M{"_id": chat.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteChat(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.chats.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) CountChats(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.chats.CountDocuments(ctx, bson.M{})
}

func (r *MongoRepository) InsertMessage(ctx context.Context, msg *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.messages.InsertOne(ctx, msg)
	return err
}

func (r *MongoRepository) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var msg models.Message
	err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MongoRepository) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *MongoRepository) DeleteMessagesByChat(ctx context.Context, chatID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.messages.DeleteMany(ctx, bson.M{"chat_id": chatID})
	return err
}
