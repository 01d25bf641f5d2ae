package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/ledger-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const transactionsCollection = "transactions"

// transactionDocument is the BSON shape of a transaction in MongoDB.
type transactionDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Amount      float64            `bson:"amount"`
	Category    string             `bson:"category"`
	Date        time.Time          `bson:"date"`
}

type categoryGroupDocument struct {
	Category     string                `bson:"_id"`
	TotalAmount  float64               `bson:"totalAmount"`
	Transactions []transactionDocument `bson:"transactions"`
}

// MongoStore persists transactions in a MongoDB collection and delegates
// sorting and grouping to the server.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo dials uri, verifies the connection and returns a store bound
// to database.transactions.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return NewMongoStore(client, database), nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(transactionsCollection),
	}
}

func (s *MongoStore) FindAll(ctx context.Context, sortBy models.SortKey) ([]models.Transaction, error) {
	opts := options.Find()
	if sortBy != models.SortNone {
		dir := 1
		if sortBy.Descending() {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: string(sortBy), Value: dir}})
	}

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return documentsToModels(docs), nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc transactionDocument
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to find transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	t := doc.toModel()
	return &t, nil
}

func (s *MongoStore) Insert(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	doc := transactionDocument{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        time.Now().UTC().Truncate(time.Millisecond),
	}
	if in.Date != nil {
		doc.Date = in.Date.UTC().Truncate(time.Millisecond)
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to create transaction: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	t := doc.toModel()
	return &t, nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, id string, in models.TransactionInput) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	set := bson.D{
		{Key: "description", Value: in.Description},
		{Key: "amount", Value: in.Amount},
		{Key: "category", Value: in.Category},
	}
	if in.Date != nil {
		set = append(set, bson.E{Key: "date", Value: in.Date.UTC().Truncate(time.Millisecond)})
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("failed to delete transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) GroupByCategory(ctx context.Context) ([]models.CategoryGroup, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "transactions", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to group transactions: %w", err)
	}
	var docs []categoryGroupDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode category groups: %w", err)
	}

	groups := make([]models.CategoryGroup, 0, len(docs))
	for _, d := range docs {
		groups = append(groups, models.CategoryGroup{
			Category:     d.Category,
			TotalAmount:  d.TotalAmount,
			Transactions: documentsToModels(d.Transactions),
		})
	}
	return groups, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d transactionDocument) toModel() models.Transaction {
	return models.Transaction{
		ID:          d.ID.Hex(),
		Description: d.Description,
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        d.Date,
	}
}

func documentsToModels(docs []transactionDocument) []models.Transaction {
	out := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out
}

// parseObjectID treats a malformed id the same as an unknown one.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid transaction id %q: %w", id, ErrNotFound)
	}
	return oid, nil
}
