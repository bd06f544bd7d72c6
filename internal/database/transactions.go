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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var status string
	err := row.Scan(&tx.Id, &tx.AssetId, &tx.BuyerId, &tx.SellerId, &tx.Price,
		&tx.TransactionHash, &status, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	tx.Status = models.TransactionStatus(status)
	return &tx, nil
}

func (s *Service) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		zap.L().Error("Failed to query transactions", zap.Error(err))
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer closeRows(rows)

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

// CreateTransaction records a pending purchase snapshot
func (s *Service) CreateTransaction(ctx context.Context, params store.CreateTransactionParams) (*models.Transaction, error) {
	verr := store.NewValidationError()
	if params.AssetId == "" {
		verr.Add("assetId", "is required")
	}
	if params.BuyerId == "" {
		verr.Add("buyerId", "is required")
	}
	if params.SellerId == "" {
		verr.Add("sellerId", "is required")
	}
	if params.BuyerId != "" && params.BuyerId == params.SellerId {
		verr.Add("buyerId", "must differ from sellerId")
	}
	if !store.ValidPrice(params.Price) {
		verr.Add("price", "must be a non-negative decimal with at most 8 fractional digits")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash := params.TransactionHash
	if hash == "" {
		hash = store.NewTransactionHash()
	}

	transaction := &models.Transaction{
		Id:              uuid.New().String(),
		AssetId:         params.AssetId,
		BuyerId:         params.BuyerId,
		SellerId:        params.SellerId,
		Price:           params.Price,
		TransactionHash: hash,
		Status:          models.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, queryInsertTransaction,
		transaction.Id, transaction.AssetId, transaction.BuyerId, transaction.SellerId,
		transaction.Price, transaction.TransactionHash, transaction.CreatedAt)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: asset, buyer or seller does not exist", store.ErrNotFound)
		case isUniqueViolation(err):
			return nil, fmt.Errorf("%w: transaction hash %s already recorded", store.ErrConflict, hash)
		case isCheckViolation(err):
			return nil, fmt.Errorf("%w: transaction rejected by table constraint", store.ErrValidation)
		}
		zap.L().Error("Failed to insert transaction",
			zap.String("asset_id", params.AssetId),
			zap.String("buyer_id", params.BuyerId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	zap.L().Info("Transaction created",
		zap.String("transaction_id", transaction.Id),
		zap.String("asset_id", transaction.AssetId),
		zap.String("buyer_id", transaction.BuyerId),
		zap.String("seller_id", transaction.SellerId),
		zap.String("price", transaction.Price))
	return transaction, nil
}

func (s *Service) GetTransactionById(ctx context.Context, transactionId string) (*models.Transaction, error) {
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, queryGetTransactionById, transactionId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", store.ErrNotFound, transactionId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// SetTransactionStatus moves a pending transaction to a terminal status.
// Completing is only accepted when the asset already belongs to the buyer, so
// the completed-implies-owned invariant cannot be broken through this path.
func (s *Service) SetTransactionStatus(ctx context.Context, transactionId string, status models.TransactionStatus) (*models.Transaction, error) {
	if !status.IsTerminal() {
		verr := store.NewValidationError()
		verr.Add("status", fmt.Sprintf("cannot transition to %q", status))
		return nil, verr
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	current, err := scanTransaction(tx.QueryRowContext(ctx, queryGetTransactionById, transactionId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", store.ErrNotFound, transactionId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if current.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: transaction %s is already %s", store.ErrInvalidState, transactionId, current.Status)
	}

	if status == models.StatusCompleted {
		asset, err := scanAsset(tx.QueryRowContext(ctx, queryGetAssetById, current.AssetId))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get asset: %w", err)
		}
		if asset == nil || asset.OwnerId != current.BuyerId {
			return nil, fmt.Errorf("%w: asset %s is not owned by buyer %s", store.ErrInvalidState, current.AssetId, current.BuyerId)
		}
	}

	if _, err := tx.ExecContext(ctx, queryUpdatePendingTransactionStatus, string(status), transactionId); err != nil {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	current.Status = status
	zap.L().Info("Transaction status updated",
		zap.String("transaction_id", transactionId),
		zap.String("status", string(status)))
	return current, nil
}

func (s *Service) ListTransactionsByUser(ctx context.Context, userId string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, queryListTransactionsByUser, userId, userId)
}

func (s *Service) ListTransactionsByStatus(ctx context.Context, status models.TransactionStatus) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, queryListTransactionsByStatus, string(status))
}

// CompleteTransfer settles a pending purchase: the status change and the owner
// change commit together or not at all. The ownership update is conditional on
// the snapshot seller still owning a for-sale listing; when it is not,
// ErrConcurrentModification is returned and nothing is written.
func (s *Service) CompleteTransfer(ctx context.Context, transactionId string) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	current, err := scanTransaction(tx.QueryRowContext(ctx, queryGetTransactionById, transactionId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", store.ErrNotFound, transactionId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if current.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: transaction %s is already %s", store.ErrInvalidState, transactionId, current.Status)
	}

	// Move ownership (with optimistic check on the snapshot seller)
	result, err := tx.ExecContext(ctx, queryTransferAssetOwner,
		current.BuyerId, time.Now().UTC(), current.AssetId, current.SellerId)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: buyer %s", store.ErrNotFound, current.BuyerId)
		}
		return nil, fmt.Errorf("failed to transfer asset owner: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, queryAssetExists, current.AssetId).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: asset %s", store.ErrNotFound, current.AssetId)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check asset: %w", err)
		}
		return nil, fmt.Errorf("ownership transfer failed - %w", store.ErrConcurrentModification)
	}

	result, err = tx.ExecContext(ctx, queryUpdatePendingTransactionStatus, string(models.StatusCompleted), transactionId)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("status update failed - %w", store.ErrConcurrentModification)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	current.Status = models.StatusCompleted
	zap.L().Info("Ownership transfer committed",
		zap.String("transaction_id", current.Id),
		zap.String("asset_id", current.AssetId),
		zap.String("seller_id", current.SellerId),
		zap.String("buyer_id", current.BuyerId),
		zap.String("price", current.Price))
	return current, nil
}
