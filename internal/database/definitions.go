package repository

import (
	"context"
	"errors"
	"fmt"

	"ShiftBot/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetStateDefinition returns the screen definition for a state key, nil when
// the key is not configured.
func (m *MongoDB) GetStateDefinition(ctx context.Context, key string) (*entity.StateDefinition, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(statesCollection)
	filter := bson.D{{Key: "state_key", Value: key}}

	var def entity.StateDefinition
	err = collection.FindOne(ctx, filter).Decode(&def)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &def, nil
}

// GetButton returns the button definition for a key, nil when absent.
func (m *MongoDB) GetButton(ctx context.Context, key string) (*entity.ButtonDefinition, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(buttonsCollection)
	filter := bson.D{{Key: "key", Value: key}}

	var def entity.ButtonDefinition
	err = collection.FindOne(ctx, filter).Decode(&def)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &def, nil
}

// ReplaceStates rewrites the states collection from the config sheet.
func (m *MongoDB) ReplaceStates(ctx context.Context, states []entity.StateDefinition) error {
	docs := make([]any, len(states))
	for i := range states {
		docs[i] = states[i]
	}
	return m.replaceCollection(ctx, statesCollection, docs)
}

// ReplaceButtons rewrites the buttons collection from the config sheet.
func (m *MongoDB) ReplaceButtons(ctx context.Context, buttons []entity.ButtonDefinition) error {
	docs := make([]any, len(buttons))
	for i := range buttons {
		docs[i] = buttons[i]
	}
	return m.replaceCollection(ctx, buttonsCollection, docs)
}

func (m *MongoDB) replaceCollection(ctx context.Context, name string, docs []any) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(name)
	if _, err := collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}
