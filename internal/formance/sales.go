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
package formance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Buyers are not funded in the ledger, so the buyer account may go negative.
// The marketplace store remains authoritative for ownership.
const numscriptSaleCompleted = `vars {
  asset $asset
  number $amount
  account $buyer_id
  account $seller_id
  string $asset_id
  string $transaction_id
  string $transaction_hash
  string $price
}

send [$asset $amount] (
  source = @users:$buyer_id allowing unbounded overdraft
  destination = @users:$seller_id
)

set_tx_meta("event_type", "sale_completed")
set_tx_meta("asset_id", $asset_id)
set_tx_meta("transaction_id", $transaction_id)
set_tx_meta("transaction_hash", $transaction_hash)
set_tx_meta("price", $price)
`

// RecordSale posts a completed purchase as a buyer to seller transfer.
// The transaction hash is the ledger reference, so replays are idempotent.
func (s *Service) RecordSale(ctx context.Context, tx models.Transaction) error {
	vars, err := saleVars(tx, s.currency)
	if err != nil {
		return err
	}

	createdAt := tx.CreatedAt
	postTx := shared.V2PostTransaction{
		Reference: strPtr(tx.TransactionHash),
		Script: &shared.V2PostTransactionScript{
			Plain: numscriptSaleCompleted,
			Vars:  vars,
		},
	}
	if !createdAt.IsZero() {
		postTx.Timestamp = &createdAt
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			zap.L().Debug("Sale already recorded in Formance",
				zap.String("transaction_hash", tx.TransactionHash))
			return nil // idempotent
		}
		return fmt.Errorf("error recording sale: %w", err)
	}

	zap.L().Info("Sale recorded in Formance",
		zap.String("transaction_id", tx.Id),
		zap.String("asset_id", tx.AssetId),
		zap.String("price", tx.Price),
		zap.String("currency", s.currency))
	return nil
}

// GetUserBalance returns the net ledger balance of a user: sales received minus purchases paid.
func (s *Service) GetUserBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	zap.L().Debug("Getting user balance from Formance", zap.String("user_id", userId))

	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: "users:" + userId,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get account volumes: %w", err)
	}

	fAsset := formanceAsset(s.currency)
	if bal := volumeBalance(resp.V2AccountResponse.Data.Volumes, fAsset); bal != nil {
		return bigIntToDecimal(bal, s.currency), nil
	}
	return decimal.Zero, nil
}

// saleVars builds the Numscript variables for a completed sale
func saleVars(tx models.Transaction, currency string) (map[string]string, error) {
	price, err := decimal.NewFromString(tx.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid sale price %q: %w", tx.Price, err)
	}
	if tx.Status != models.StatusCompleted {
		return nil, fmt.Errorf("transaction %s is %s, not completed", tx.Id, tx.Status)
	}

	return map[string]string{
		"asset":            formanceAsset(currency),
		"amount":           price.Shift(int32(precisionFor(currency))).BigInt().String(),
		"buyer_id":         tx.BuyerId,
		"seller_id":        tx.SellerId,
		"asset_id":         tx.AssetId,
		"transaction_id":   tx.Id,
		"transaction_hash": tx.TransactionHash,
		"price":            tx.Price,
	}, nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// bigIntToDecimal converts a *big.Int in smallest-unit to a human-readable decimal.
func bigIntToDecimal(raw *big.Int, symbol string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(precisionFor(symbol)))
}
