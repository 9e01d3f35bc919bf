package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names predate this service and are shared with the ingestion
// pipeline, so they cannot be renamed.
const (
	notationsCollection = "SynapseOS-notation"
	inputsCollection    = "SynapseOS"
	aiOutputsCollection = "SynapseOS-output"
)

type MongoStore struct {
	client    *mongo.Client
	notations *mongo.Collection
	inputs    *mongo.Collection
	aiOutputs *mongo.Collection
}

// OpenMongo connects a single process-lifetime client, verified with an
// initial ping. The caller owns the handle and closes it on shutdown.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:    client,
		notations: db.Collection(notationsCollection),
		inputs:    db.Collection(inputsCollection),
		aiOutputs: db.Collection(aiOutputsCollection),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Stored documents carry the generated ObjectId; models expose it as an
// opaque hex string. The inline embedding keeps the wire field names from
// the model tags.
type notationDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Notation `bson:",inline"`
}

type inputDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Input `bson:",inline"`
}

type aiOutputDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	AIOutput `bson:",inline"`
}

func (s *MongoStore) InsertNotation(ctx context.Context, notation Notation) (Notation, error) {
	result, err := s.notations.InsertOne(ctx, notationDoc{Notation: notation})
	if err != nil {
		return Notation{}, fmt.Errorf("insert notation: %w", err)
	}
	// Re-read the persisted document so the caller gets exactly what the
	// store holds, identity included.
	var doc notationDoc
	if err := s.notations.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&doc); err != nil {
		return Notation{}, fmt.Errorf("read back notation: %w", err)
	}
	doc.Notation.ID = doc.ID.Hex()
	return doc.Notation, nil
}

func (s *MongoStore) FindNotationByNameDate(ctx context.Context, name, date string) (*Notation, error) {
	var doc notationDoc
	err := s.notations.FindOne(ctx, bson.M{"name": name, "date": date}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find notation: %w", err)
	}
	doc.Notation.ID = doc.ID.Hex()
	return &doc.Notation, nil
}

func (s *MongoStore) ListNotations(ctx context.Context, query ListQuery) ([]Notation, error) {
	cursor, err := s.notations.Find(ctx, listFilter("name", "date", query), listOptions("date", query))
	if err != nil {
		return nil, fmt.Errorf("list notations: %w", err)
	}
	var docs []notationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notations: %w", err)
	}
	out := make([]Notation, 0, len(docs))
	for _, doc := range docs {
		doc.Notation.ID = doc.ID.Hex()
		out = append(out, doc.Notation)
	}
	return out, nil
}

func (s *MongoStore) InsertInput(ctx context.Context, input Input) (Input, error) {
	result, err := s.inputs.InsertOne(ctx, inputDoc{Input: input})
	if err != nil {
		return Input{}, fmt.Errorf("insert input: %w", err)
	}
	var doc inputDoc
	if err := s.inputs.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&doc); err != nil {
		return Input{}, fmt.Errorf("read back input: %w", err)
	}
	doc.Input.ID = doc.ID.Hex()
	return doc.Input, nil
}

func (s *MongoStore) ListInputs(ctx context.Context, query ListQuery) ([]Input, error) {
	cursor, err := s.inputs.Find(ctx, listFilter("Name", "Date", query), listOptions("Date", query))
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	var docs []inputDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	out := make([]Input, 0, len(docs))
	for _, doc := range docs {
		doc.Input.ID = doc.ID.Hex()
		out = append(out, doc.Input)
	}
	return out, nil
}

func (s *MongoStore) LatestInput(ctx context.Context, name string) (Input, error) {
	var doc inputDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "Date", Value: -1}})
	err := s.inputs.FindOne(ctx, bson.M{"Name": name}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Input{}, ErrNotFound
	}
	if err != nil {
		return Input{}, fmt.Errorf("latest input: %w", err)
	}
	doc.Input.ID = doc.ID.Hex()
	return doc.Input, nil
}

func (s *MongoStore) InsertAIOutput(ctx context.Context, output AIOutput) (AIOutput, error) {
	result, err := s.aiOutputs.InsertOne(ctx, aiOutputDoc{AIOutput: output})
	if err != nil {
		return AIOutput{}, fmt.Errorf("insert ai output: %w", err)
	}
	var doc aiOutputDoc
	if err := s.aiOutputs.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&doc); err != nil {
		return AIOutput{}, fmt.Errorf("read back ai output: %w", err)
	}
	doc.AIOutput.ID = doc.ID.Hex()
	return doc.AIOutput, nil
}

func (s *MongoStore) ListAIOutputs(ctx context.Context, query ListQuery) ([]AIOutput, error) {
	cursor, err := s.aiOutputs.Find(ctx, listFilter("Name", "Date", query), listOptions("Date", query))
	if err != nil {
		return nil, fmt.Errorf("list ai outputs: %w", err)
	}
	var docs []aiOutputDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ai outputs: %w", err)
	}
	out := make([]AIOutput, 0, len(docs))
	for _, doc := range docs {
		doc.AIOutput.ID = doc.ID.Hex()
		out = append(out, doc.AIOutput)
	}
	return out, nil
}

func (s *MongoStore) LatestAIOutput(ctx context.Context, name string) (AIOutput, error) {
	var doc aiOutputDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "Date", Value: -1}})
	err := s.aiOutputs.FindOne(ctx, bson.M{"Name": name}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return AIOutput{}, ErrNotFound
	}
	if err != nil {
		return AIOutput{}, fmt.Errorf("latest ai output: %w", err)
	}
	doc.AIOutput.ID = doc.ID.Hex()
	return doc.AIOutput, nil
}

// listFilter builds the per-user query with inclusive string-compared date
// bounds. Field keys differ per collection (the inputs/outputs collections
// use capitalized names), so they are passed in.
func listFilter(nameKey, dateKey string, query ListQuery) bson.M {
	filter := bson.M{nameKey: query.Name}
	dateRange := bson.M{}
	if query.StartDate != "" {
		dateRange["$gte"] = query.StartDate
	}
	if query.EndDate != "" {
		dateRange["$lte"] = query.EndDate
	}
	if len(dateRange) > 0 {
		filter[dateKey] = dateRange
	}
	return filter
}

func listOptions(dateKey string, query ListQuery) *options.FindOptions {
	direction := -1
	if query.SortAsc {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: dateKey, Value: direction}})
	if query.Limit > 0 {
		opts = opts.SetLimit(query.Limit)
	}
	return opts
}
