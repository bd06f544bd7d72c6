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
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshumPal/icp-vr-marketplace/internal/metrics"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"go.uber.org/zap"
)

// Purchase validates the request and records a pending transaction snapshot.
// Confirmation happens later on the settler; the pending transaction is returned immediately.
func (s *MarketService) Purchase(ctx context.Context, assetId, buyerId string) (tx *models.Transaction, err error) {
	defer func() {
		if err != nil {
			s.metrics.Purchase(metrics.OutcomeRejected)
		} else {
			s.metrics.Purchase(metrics.OutcomeAccepted)
		}
	}()

	verr := store.NewValidationError()
	if assetId == "" {
		verr.Add("assetId", "is required")
	}
	if buyerId == "" {
		verr.Add("buyerId", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	unlock := s.settler.Locker().Lock(assetId)
	defer unlock()

	asset, err := s.store.GetAssetById(ctx, assetId)
	if err != nil {
		return nil, err
	}
	if !asset.IsForSale {
		return nil, fmt.Errorf("%w: asset %s is not for sale", store.ErrInvalidState, assetId)
	}
	if asset.OwnerId == buyerId {
		return nil, fmt.Errorf("%w: self-purchase of asset %s", store.ErrInvalidState, assetId)
	}
	if _, err := s.store.GetUserById(ctx, buyerId); err != nil {
		return nil, err
	}

	tx, err = s.store.CreateTransaction(ctx, store.CreateTransactionParams{
		AssetId:         asset.Id,
		BuyerId:         buyerId,
		SellerId:        asset.OwnerId,
		Price:           asset.Price,
		TransactionHash: store.NewTransactionHash(),
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Purchase submitted",
		zap.String("transaction_id", tx.Id),
		zap.String("asset_id", tx.AssetId),
		zap.String("buyer_id", tx.BuyerId),
		zap.String("seller_id", tx.SellerId),
		zap.String("price", tx.Price),
		zap.String("transaction_hash", tx.TransactionHash))

	if scheduleErr := s.settler.Schedule(*tx); scheduleErr != nil {
		// Stays pending in the store and is rescheduled by startup recovery
		zap.L().Warn("Failed to schedule confirmation",
			zap.String("transaction_id", tx.Id),
			zap.Error(scheduleErr))
	}
	return tx, nil
}

func (s *MarketService) GetTransaction(ctx context.Context, transactionId string) (*models.Transaction, error) {
	return s.store.GetTransactionById(ctx, transactionId)
}

// ListTransactionsByUser returns the purchases and sales of a user, newest first
func (s *MarketService) ListTransactionsByUser(ctx context.Context, userId string) ([]models.Transaction, error) {
	if _, err := s.store.GetUserById(ctx, userId); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.store.ListTransactionsByUser(ctx, userId)
}
