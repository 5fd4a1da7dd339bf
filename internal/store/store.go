// Package store retains the last good evaluation of every rig, so that a
// failed evaluation leaves the previously published result in place.
package store

import (
	"context"
	"errors"
	"time"

	"honnef.co/go/ptframe/internal/rigfile"
)

// ErrNotFound is returned when a rig has no stored result.
var ErrNotFound = errors.New("no stored result")

// Record is a stored evaluation.
type Record struct {
	Evaluation rigfile.Evaluation `json:"evaluation"`
	// Fingerprints of the rig that produced the evaluation, keyed by output
	// name.
	Fingerprints map[string]string `json:"fingerprints"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Store persists records by rig name.
type Store interface {
	Save(ctx context.Context, rig string, rec *Record) error
	Load(ctx context.Context, rig string) (*Record, error)
	Delete(ctx context.Context, rig string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}
