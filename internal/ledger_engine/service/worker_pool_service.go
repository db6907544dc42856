package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/wallet-ledger/internal/domain/user"
)

// WorkerPoolTransferEngine bounds how many transfers hold database connections and row locks at once
type WorkerPoolTransferEngine struct {
	baseEngine TransferEngine
	pool       *ants.Pool
	logger     *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolTransferEngine(
	baseEngine TransferEngine,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolTransferEngine, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolTransferEngine{
		baseEngine: baseEngine,
		pool:       pool,
		logger:     logger,
	}, nil
}

type transferOutcome struct {
	result *TransferResult
	err    error
}

// Transfer runs the transfer on a pool worker and waits for it to finish.
// A running transfer is never abandoned, so the caller always learns whether it committed.
func (s *WorkerPoolTransferEngine) Transfer(ctx context.Context, principal user.Principal, request *TransferRequest) (*TransferResult, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	outcome := make(chan transferOutcome, 1)
	requestCopy := *request

	err := s.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- transferOutcome{err: fmt.Errorf("transfer panicked: %v", r)}
			}
		}()
		result, err := s.baseEngine.Transfer(ctx, principal, &requestCopy)
		outcome <- transferOutcome{result: result, err: err}
	})
	if err != nil {
		logger.Error("Failed to submit transfer to worker pool",
			"sender_wallet_id", request.SenderWalletID.String(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to schedule transfer: %w", err)
	}

	o := <-outcome
	return o.result, o.err
}

// Shutdown releases the pool; later submissions fail
func (s *WorkerPoolTransferEngine) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolTransferEngine) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolTransferEngine) Capacity() int {
	return s.pool.Cap()
}
