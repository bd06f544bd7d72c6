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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a purchase transaction
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// User represents a marketplace participant
type User struct {
	Id            string    `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	WalletAddress *string   `db:"wallet_address" json:"walletAddress"`
	Balance       string    `db:"balance" json:"balance"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Asset represents a VR asset listing
type Asset struct {
	Id          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Price       string    `db:"price" json:"price"`
	PreviewUrl  string    `db:"preview_url" json:"previewUrl"`
	ModelUrl    *string   `db:"model_url" json:"modelUrl"`
	FileSize    *string   `db:"file_size" json:"fileSize"`
	OwnerId     string    `db:"owner_id" json:"ownerId"`
	IsForSale   bool      `db:"is_for_sale" json:"isForSale"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// PriceDecimal parses the stored price. The stored string is never rewritten.
func (a Asset) PriceDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(a.Price)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Transaction represents a purchase of an asset. AssetId, SellerId and Price
// are snapshots taken when the purchase was submitted.
type Transaction struct {
	Id              string            `db:"id" json:"id"`
	AssetId         string            `db:"asset_id" json:"assetId"`
	BuyerId         string            `db:"buyer_id" json:"buyerId"`
	SellerId        string            `db:"seller_id" json:"sellerId"`
	Price           string            `db:"price" json:"price"`
	TransactionHash string            `db:"transaction_hash" json:"transactionHash"`
	Status          TransactionStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
}

// PriceDecimal parses the snapshot price.
func (t Transaction) PriceDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(t.Price)
	if err != nil {
		return decimal.Zero
	}
	return d
}
