// Package store defines the entities and the contract of the authoritative
// document store. Companies own rounds, rounds own questions.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

type Company struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"userId" bson:"userId"`
	CompanyName string    `json:"companyName" bson:"companyName"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type Round struct {
	ID        string    `json:"id" bson:"_id"`
	CompanyID string    `json:"companyId" bson:"companyId"`
	RoundName string    `json:"roundName" bson:"roundName"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Question struct {
	ID          string    `json:"id" bson:"_id"`
	CompanyID   string    `json:"companyId" bson:"companyId"`
	RoundID     string    `json:"roundId" bson:"roundId"`
	Question    string    `json:"question" bson:"question"`
	Answer      string    `json:"answer" bson:"answer"`
	Difficulty  string    `json:"difficulty" bson:"difficulty"`
	Language    string    `json:"language,omitempty" bson:"language,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	GeneratedAt time.Time `json:"generatedAt" bson:"generatedAt"`
}

// QuestionFilter narrows question reads and deletes. Empty fields are not
// applied. A Limit of 0 means no limit. Results are always ordered by
// generatedAt descending.
type QuestionFilter struct {
	CompanyID  string
	RoundID    string
	Language   string
	Difficulty string
	Limit      int64
}

type Store interface {
	CreateCompany(ctx context.Context, c Company) error
	// CompanyExists reports whether the user already has a company with
	// this exact name.
	CompanyExists(ctx context.Context, userID, companyName string) (bool, error)
	CompanyByID(ctx context.Context, id string) (Company, error)
	CompaniesByUser(ctx context.Context, userID string) ([]Company, error)

	CreateRound(ctx context.Context, r Round) error
	RoundByID(ctx context.Context, companyID, roundID string) (Round, error)
	// RoundsByCompany returns rounds newest first.
	RoundsByCompany(ctx context.Context, companyID string) ([]Round, error)

	// InsertQuestions writes a generated batch in one operation.
	InsertQuestions(ctx context.Context, qs []Question) error
	Questions(ctx context.Context, f QuestionFilter) ([]Question, error)
	// DeleteQuestions removes everything matching f and reports how many
	// documents went away.
	DeleteQuestions(ctx context.Context, f QuestionFilter) (int64, error)

	Ping(ctx context.Context) error
}
