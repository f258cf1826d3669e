// Package mongodb implements store.Store on MongoDB. Companies, rounds and
// questions live in flat collections; the ownership hierarchy is expressed
// through companyId/roundId fields rather than nesting, so every read is a
// single indexed filter.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"prepdeck-backend/internal/store"
)

type Store struct {
	client    *mongo.Client
	companies *mongo.Collection
	rounds    *mongo.Collection
	questions *mongo.Collection
}

// Connect dials MongoDB and pings it so a misconfigured URI fails at
// startup, not on the first request.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:    client,
		companies: db.Collection("companies"),
		rounds:    db.Collection("rounds"),
		questions: db.Collection("questions"),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) CreateCompany(ctx context.Context, c store.Company) error {
	if _, err := s.companies.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *Store) CompanyExists(ctx context.Context, userID, companyName string) (bool, error) {
	n, err := s.companies.CountDocuments(ctx,
		bson.M{"userId": userID, "companyName": companyName},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count companies: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CompanyByID(ctx context.Context, id string) (store.Company, error) {
	var c store.Company
	err := s.companies.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Company{}, store.ErrNotFound
	}
	if err != nil {
		return store.Company{}, fmt.Errorf("find company: %w", err)
	}
	return c, nil
}

func (s *Store) CompaniesByUser(ctx context.Context, userID string) ([]store.Company, error) {
	cur, err := s.companies.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find companies: %w", err)
	}
	var out []store.Company
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode companies: %w", err)
	}
	return out, nil
}

func (s *Store) CreateRound(ctx context.Context, r store.Round) error {
	if _, err := s.rounds.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

func (s *Store) RoundByID(ctx context.Context, companyID, roundID string) (store.Round, error) {
	var r store.Round
	err := s.rounds.FindOne(ctx, bson.M{"_id": roundID, "companyId": companyID}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Round{}, store.ErrNotFound
	}
	if err != nil {
		return store.Round{}, fmt.Errorf("find round: %w", err)
	}
	return r, nil
}

func (s *Store) RoundsByCompany(ctx context.Context, companyID string) ([]store.Round, error) {
	cur, err := s.rounds.Find(ctx, bson.M{"companyId": companyID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find rounds: %w", err)
	}
	var out []store.Round
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode rounds: %w", err)
	}
	return out, nil
}

func (s *Store) InsertQuestions(ctx context.Context, qs []store.Question) error {
	if len(qs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(qs))
	for _, q := range qs {
		docs = append(docs, q)
	}
	if _, err := s.questions.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

func (s *Store) Questions(ctx context.Context, f store.QuestionFilter) ([]store.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	if f.Limit > 0 {
		opts = opts.SetLimit(f.Limit)
	}
	cur, err := s.questions.Find(ctx, questionFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	var out []store.Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteQuestions(ctx context.Context, f store.QuestionFilter) (int64, error) {
	res, err := s.questions.DeleteMany(ctx, questionFilter(f))
	if err != nil {
		return 0, fmt.Errorf("delete questions: %w", err)
	}
	return res.DeletedCount, nil
}

func questionFilter(f store.QuestionFilter) bson.M {
	filter := bson.M{
		"companyId": f.CompanyID,
		"roundId":   f.RoundID,
	}
	if f.Language != "" {
		filter["language"] = f.Language
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	return filter
}
