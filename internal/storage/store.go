package storage

import (
	"context"

	"rotorbreak/internal/model"
)

// Store defines transaction-like persistence operations for attack runs and
// their fitness traces.
type Store interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	SaveAttackRun(ctx context.Context, run model.AttackRun) error
	GetAttackRun(ctx context.Context, id string) (model.AttackRun, bool, error)
	ListAttackRuns(ctx context.Context) ([]model.AttackRun, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
}
