// Package store archives finished evolutionary runs so their best programs
// can be listed and re-evaluated later.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines persistence operations for run records.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	// ListRuns returns every archived run, most recent first.
	ListRuns(ctx context.Context) ([]RunRecord, error)
}

type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the archived summary of one run.
type RunRecord struct {
	VersionedRecord
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Pool           string    `json:"pool"`
	Strategy       string    `json:"strategy"`
	Population     int       `json:"population"`
	MaxGenerations int       `json:"max_generations"`
	Seed           int64     `json:"seed"`
	State          string    `json:"state"`
	Generations    int       `json:"generations"`
	BestFoundAtGen int       `json:"best_found_at_gen"`
	// VarNames are the names BestExpression was printed with.
	VarNames       []string  `json:"var_names"`
	BestExpression string    `json:"best_expression"`
	BestError      float64   `json:"best_error"`
	TrainAccuracy  float64   `json:"train_accuracy"`
	TestAccuracy   *float64  `json:"test_accuracy,omitempty"`
	History        []float64 `json:"history,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewRunRecord returns a record stamped with the current versions and a new ID.
func NewRunRecord() RunRecord {
	return RunRecord{
		VersionedRecord: VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              NewRunID(),
	}
}
