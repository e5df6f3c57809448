package repository

import (
	"context"
	"errors"
	"fmt"

	"ShiftBot/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetBotUser looks a user up by Telegram id. Returns nil, nil when unknown.
func (m *MongoDB) GetBotUser(ctx context.Context, telegramId int64) (*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	filter := bson.D{{Key: "telegram_id", Value: telegramId}}

	var user entity.User
	err = collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &user, nil
}

// CreateBotUser inserts the user unless one already exists for the id.
func (m *MongoDB) CreateBotUser(ctx context.Context, user *entity.User) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	filter := bson.D{{Key: "telegram_id", Value: user.TelegramId}}
	update := bson.M{"$setOnInsert": user}

	_, err = collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}
	return nil
}

// SetUserState updates only the state key.
func (m *MongoDB) SetUserState(ctx context.Context, telegramId int64, state string) error {
	return m.setUserField(ctx, telegramId, "state", state)
}

// SetUserRole updates only the role label.
func (m *MongoDB) SetUserRole(ctx context.Context, telegramId int64, role string) error {
	return m.setUserField(ctx, telegramId, "role", role)
}

// SetLastMessageId records the message slot the bot renders into.
func (m *MongoDB) SetLastMessageId(ctx context.Context, telegramId int64, messageId int64) error {
	return m.setUserField(ctx, telegramId, "last_message_id", messageId)
}

// SaveDraft replaces the stored draft with the merged copy the engine holds.
func (m *MongoDB) SaveDraft(ctx context.Context, telegramId int64, draft entity.ReportDraft) error {
	return m.setUserField(ctx, telegramId, "daily_report_draft", draft)
}

func (m *MongoDB) setUserField(ctx context.Context, telegramId int64, field string, value any) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	filter := bson.D{{Key: "telegram_id", Value: telegramId}}
	update := bson.M{"$set": bson.M{field: value}}

	_, err = collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// ListBotUsers returns all known users.
func (m *MongoDB) ListBotUsers(ctx context.Context) ([]entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, m.findError(err)
	}
	defer cursor.Close(ctx)

	var users []entity.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return users, nil
}

// ReplaceBotUsers rewrites the whole users collection from the config sheet.
func (m *MongoDB) ReplaceBotUsers(ctx context.Context, users []entity.User) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	if _, err := collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	docs := make([]any, len(users))
	for i := range users {
		docs[i] = users[i]
	}
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}
