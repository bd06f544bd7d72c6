/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AnshumPal/icp-vr-marketplace/internal/metrics"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"go.uber.org/zap"
)

// ErrStopped is returned when a purchase is scheduled after Stop
var ErrStopped = errors.New("settler stopped")

// Recorder mirrors completed sales into an external ledger
type Recorder interface {
	RecordSale(ctx context.Context, tx models.Transaction) error
}

// SettlerConfig contains configuration for Settler
type SettlerConfig struct {
	Store             store.MarketStore
	Locker            *AssetLocker
	Recorder          Recorder
	Metrics           *metrics.Metrics
	ConfirmationDelay time.Duration
	RecoverPending    bool
}

// Settler confirms pending purchases after the confirmation delay. Each
// confirmation re-checks ownership and moves the asset in a single store
// transaction, or marks the purchase failed.
type Settler struct {
	store    store.MarketStore
	locker   *AssetLocker
	recorder Recorder
	metrics  *metrics.Metrics

	confirmationDelay time.Duration
	recoverPending    bool

	// Scheduled confirmations keyed by transaction id
	timers  map[string]*time.Timer
	mutex   sync.Mutex
	wg      sync.WaitGroup
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSettler creates a new settler
func NewSettler(cfg SettlerConfig) *Settler {
	locker := cfg.Locker
	if locker == nil {
		locker = NewAssetLocker()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Settler{
		store:             cfg.Store,
		locker:            locker,
		recorder:          cfg.Recorder,
		metrics:           cfg.Metrics,
		confirmationDelay: cfg.ConfirmationDelay,
		recoverPending:    cfg.RecoverPending,
		timers:            make(map[string]*time.Timer),
		ctx:               ctx,
		cancel:            cancel,
	}
}

// Locker returns the asset locker shared with purchase submission
func (s *Settler) Locker() *AssetLocker {
	return s.locker
}

// Start reschedules purchases left pending by a previous run
func (s *Settler) Start(ctx context.Context) error {
	zap.L().Info("Starting settler",
		zap.Duration("confirmation_delay", s.confirmationDelay),
		zap.Bool("recover_pending", s.recoverPending))

	if !s.recoverPending {
		return nil
	}

	if err := s.performStartupRecovery(ctx); err != nil {
		zap.L().Error("Startup recovery failed", zap.Error(err))
		return fmt.Errorf("startup recovery failed: %w", err)
	}
	return nil
}

// Stop cancels outstanding confirmations and waits for running ones to finish.
// Cancelled purchases stay pending and are picked up again by the next Start.
func (s *Settler) Stop() {
	zap.L().Info("Stopping settler")

	s.mutex.Lock()
	s.stopped = true
	cancelled := 0
	for transactionId, timer := range s.timers {
		if timer.Stop() {
			cancelled++
			s.wg.Done()
		}
		delete(s.timers, transactionId)
	}
	s.mutex.Unlock()

	s.cancel()
	s.wg.Wait()
	s.metrics.SetPendingSettlements(0)

	zap.L().Info("Settler stopped", zap.Int("cancelled_confirmations", cancelled))
}

// Schedule arranges for the purchase to be confirmed after the confirmation
// delay, measured from the time it was submitted
func (s *Settler) Schedule(tx models.Transaction) error {
	delay := s.confirmationDelay - time.Since(tx.CreatedAt)
	if delay < 0 {
		delay = 0
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if _, exists := s.timers[tx.Id]; exists {
		return nil
	}

	transactionId := tx.Id
	submittedAt := tx.CreatedAt
	s.wg.Add(1)
	s.timers[transactionId] = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.runConfirmation(transactionId, submittedAt)
	})
	s.metrics.SetPendingSettlements(len(s.timers))

	zap.L().Debug("Confirmation scheduled",
		zap.String("transaction_id", transactionId),
		zap.Duration("delay", delay))
	return nil
}

// isScheduled checks if a confirmation is waiting for this transaction
func (s *Settler) isScheduled(transactionId string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, exists := s.timers[transactionId]
	return exists
}

func (s *Settler) runConfirmation(transactionId string, submittedAt time.Time) {
	s.mutex.Lock()
	delete(s.timers, transactionId)
	stopped := s.stopped
	s.metrics.SetPendingSettlements(len(s.timers))
	s.mutex.Unlock()

	if stopped {
		return
	}

	tx, err := s.Confirm(s.ctx, transactionId)
	if err != nil {
		s.metrics.Settlement(metrics.OutcomeError, submittedAt)
		zap.L().Error("Confirmation failed",
			zap.String("transaction_id", transactionId),
			zap.Error(err))
		return
	}
	s.metrics.Settlement(string(tx.Status), submittedAt)
}

// Confirm settles one pending purchase. If the seller still owns the asset and
// it is still for sale, ownership moves to the buyer and the purchase completes;
// otherwise the purchase is marked failed. Purchases already in a terminal
// status are returned unchanged.
func (s *Settler) Confirm(ctx context.Context, transactionId string) (*models.Transaction, error) {
	tx, err := s.store.GetTransactionById(ctx, transactionId)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	unlock := s.locker.Lock(tx.AssetId)
	defer unlock()

	completed, err := s.store.CompleteTransfer(ctx, transactionId)
	switch {
	case err == nil:
		s.recordSale(ctx, *completed)
		return completed, nil

	case errors.Is(err, store.ErrInvalidState):
		// Already settled by an earlier confirmation
		current, getErr := s.store.GetTransactionById(ctx, transactionId)
		if getErr != nil {
			return nil, fmt.Errorf("failed to reload transaction: %w", getErr)
		}
		zap.L().Debug("Transaction already settled",
			zap.String("transaction_id", transactionId),
			zap.String("status", string(current.Status)))
		return current, nil

	case errors.Is(err, store.ErrConcurrentModification), errors.Is(err, store.ErrNotFound):
		zap.L().Warn("Purchase precondition no longer holds - marking failed",
			zap.String("transaction_id", transactionId),
			zap.String("asset_id", tx.AssetId),
			zap.String("seller_id", tx.SellerId),
			zap.String("buyer_id", tx.BuyerId),
			zap.Error(err))
		failed, failErr := s.store.SetTransactionStatus(ctx, transactionId, models.StatusFailed)
		if failErr != nil {
			return nil, fmt.Errorf("failed to mark transaction failed: %w", failErr)
		}
		return failed, nil

	default:
		return nil, fmt.Errorf("failed to complete transfer: %w", err)
	}
}

// recordSale mirrors the sale into the ledger. The store stays the source of
// truth, so a ledger failure is logged and does not undo the transfer.
func (s *Settler) recordSale(ctx context.Context, tx models.Transaction) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSale(ctx, tx); err != nil {
		zap.L().Error("Failed to record sale in ledger",
			zap.String("transaction_id", tx.Id),
			zap.String("transaction_hash", tx.TransactionHash),
			zap.Error(err))
	}
}

// performStartupRecovery schedules every purchase still pending in the store
func (s *Settler) performStartupRecovery(ctx context.Context) error {
	zap.L().Info("Starting startup recovery process")

	pending, err := s.store.ListTransactionsByStatus(ctx, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending transactions: %w", err)
	}

	var recovered int
	for _, tx := range pending {
		if s.isScheduled(tx.Id) {
			continue
		}
		if err := s.Schedule(tx); err != nil {
			return fmt.Errorf("failed to schedule transaction %s: %w", tx.Id, err)
		}
		recovered++
		zap.L().Info("Recovered pending transaction",
			zap.String("transaction_id", tx.Id),
			zap.String("asset_id", tx.AssetId),
			zap.Time("created_at", tx.CreatedAt))
	}

	zap.L().Info("Startup recovery completed successfully",
		zap.Int("total_transactions_recovered", recovered))
	return nil
}
