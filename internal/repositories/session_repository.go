package repositories

import (
	"context"
	"datachat-ai/internal/models"
	"datachat-ai/pkg/mongodb"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(session *models.Session) error
	Update(id primitive.ObjectID, session *models.Session) error
	Delete(id primitive.ObjectID) error
	FindByID(id primitive.ObjectID) (*models.Session, error)
	List(page, pageSize int) ([]*models.Session, int64, error)
	CreateMessage(message *models.Message) error
	UpdateMessage(id primitive.ObjectID, message *models.Message) error
	DeleteMessages(sessionID primitive.ObjectID) error
	FindMessagesBySession(sessionID primitive.ObjectID, page, pageSize int) ([]*models.Message, int64, error)
	FindLatestMessagesBySession(sessionID primitive.ObjectID, limit int) ([]*models.Message, error)
}

type sessionRepository struct {
	sessionCollection *mongo.Collection
	messageCollection *mongo.Collection
}

func NewSessionRepository(mongoClient *mongodb.MongoDBClient) SessionRepository {
	return &sessionRepository{
		sessionCollection: mongoClient.GetCollectionByName("sessions"),
		messageCollection: mongoClient.GetCollectionByName("messages"),
	}
}

func (r *sessionRepository) Create(session *models.Session) error {
	_, err := r.sessionCollection.InsertOne(context.Background(), session)
	return err
}

func (r *sessionRepository) Update(id primitive.ObjectID, session *models.Session) error {
	session.UpdatedAt = time.Now()
	filter := bson.M{"_id": id}
	update := bson.M{"$set": session}
	_, err := r.sessionCollection.UpdateOne(context.Background(), filter, update)
	return err
}

func (r *sessionRepository) Delete(id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	_, err := r.sessionCollection.DeleteOne(context.Background(), filter)
	return err
}

func (r *sessionRepository) FindByID(id primitive.ObjectID) (*models.Session, error) {
	var session models.Session
	err := r.sessionCollection.FindOne(context.Background(), bson.M{"_id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &session, err
}

func (r *sessionRepository) List(page, pageSize int) ([]*models.Session, int64, error) {
	var sessions []*models.Session
	filter := bson.M{}

	total, err := r.sessionCollection.CountDocuments(context.Background(), filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((page - 1) * pageSize)
	opts := options.Find().
		SetSkip(skip).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.sessionCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(context.Background())

	err = cursor.All(context.Background(), &sessions)
	return sessions, total, err
}

func (r *sessionRepository) CreateMessage(message *models.Message) error {
	r.updateSessionTimestamp(message.SessionID)
	_, err := r.messageCollection.InsertOne(context.Background(), message)
	return err
}

func (r *sessionRepository) UpdateMessage(id primitive.ObjectID, message *models.Message) error {
	r.updateSessionTimestamp(message.SessionID)
	message.UpdatedAt = time.Now()
	filter := bson.M{"_id": id}
	update := bson.M{"$set": message}
	_, err := r.messageCollection.UpdateOne(context.Background(), filter, update)
	return err
}

func (r *sessionRepository) DeleteMessages(sessionID primitive.ObjectID) error {
	filter := bson.M{"session_id": sessionID}
	_, err := r.messageCollection.DeleteMany(context.Background(), filter)
	return err
}

func (r *sessionRepository) FindMessagesBySession(sessionID primitive.ObjectID, page, pageSize int) ([]*models.Message, int64, error) {
	var messages []*models.Message
	filter := bson.M{"session_id": sessionID}

	total, err := r.messageCollection.CountDocuments(context.Background(), filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((page - 1) * pageSize)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(skip).
		SetLimit(int64(pageSize))

	cursor, err := r.messageCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(context.Background())

	err = cursor.All(context.Background(), &messages)
	return messages, total, err
}

// FindLatestMessagesBySession returns the trailing window of the conversation
// in chronological order. The query sorts descending to take the newest turns,
// then the slice is reversed before returning.
func (r *sessionRepository) FindLatestMessagesBySession(sessionID primitive.ObjectID, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	filter := bson.M{"session_id": sessionID}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.messageCollection.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.Background())

	if err := cursor.All(context.Background(), &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *sessionRepository) updateSessionTimestamp(sessionID primitive.ObjectID) {
	go func() {
		filter := bson.M{"_id": sessionID}
		update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
		_, err := r.sessionCollection.UpdateOne(context.Background(), filter, update)
		if err != nil {
			log.Printf("Error updating session timestamp: %v", err)
		}
	}()
}
