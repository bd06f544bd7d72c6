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

const (
	schema = `
	-- Users table
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		wallet_address TEXT UNIQUE,
		balance TEXT NOT NULL DEFAULT '0',
		created_at TIMESTAMP NOT NULL
	);

	-- Asset listings; price is TEXT so the submitted precision is preserved
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		price TEXT NOT NULL,
		preview_url TEXT NOT NULL,
		model_url TEXT,
		file_size TEXT,
		owner_id TEXT NOT NULL REFERENCES users(id),
		is_for_sale BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_owner_id ON assets(owner_id);
	CREATE INDEX IF NOT EXISTS idx_assets_category ON assets(category);
	CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets(created_at);

	-- Purchase transactions; seller_id and price are snapshots taken at submission
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL REFERENCES assets(id),
		buyer_id TEXT NOT NULL REFERENCES users(id),
		seller_id TEXT NOT NULL REFERENCES users(id),
		price TEXT NOT NULL,
		transaction_hash TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
		created_at TIMESTAMP NOT NULL,
		CHECK (buyer_id <> seller_id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_buyer_id ON transactions(buyer_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_seller_id ON transactions(seller_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_asset_id ON transactions(asset_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	`

	// User queries
	userColumns = `id, username, wallet_address, balance, created_at`

	queryInsertUser = `
		INSERT INTO users (id, username, wallet_address, balance, created_at)
		VALUES (?, ?, ?, ?, ?)`

	queryGetUsers = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at, rowid`

	queryGetUserById = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ?`

	queryGetUserByWallet = `
		SELECT ` + userColumns + `
		FROM users
		WHERE wallet_address = ?`

	queryCountUsers = `SELECT COUNT(*) FROM users`

	// Asset queries
	assetColumns = `id, title, description, category, price, preview_url, model_url, file_size,
		owner_id, is_for_sale, created_at, updated_at`

	queryInsertAsset = `
		INSERT INTO assets (id, title, description, category, price, preview_url, model_url, file_size,
			owner_id, is_for_sale, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`

	queryGetAssetById = `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE id = ?`

	queryListAssets = `
		SELECT ` + assetColumns + `
		FROM assets
		ORDER BY created_at DESC, rowid DESC`

	queryListAssetsByCategory = `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE category = ?
		ORDER BY created_at DESC, rowid DESC`

	queryListAssetsByOwner = `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC`

	queryAssetExists = `SELECT 1 FROM assets WHERE id = ?`

	queryUpdateAssetOwner = `
		UPDATE assets
		SET owner_id = ?, updated_at = ?
		WHERE id = ?`

	queryUpdateAssetForSale = `
		UPDATE assets
		SET is_for_sale = ?, updated_at = ?
		WHERE id = ?`

	// Conditional ownership move: only applies while the snapshot seller still owns the listing
	queryTransferAssetOwner = `
		UPDATE assets
		SET owner_id = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND is_for_sale = 1`

	// Transaction queries
	transactionColumns = `id, asset_id, buyer_id, seller_id, price, transaction_hash, status, created_at`

	queryInsertTransaction = `
		INSERT INTO transactions (id, asset_id, buyer_id, seller_id, price, transaction_hash, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`

	queryGetTransactionById = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ?`

	queryListTransactionsByUser = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE buyer_id = ? OR seller_id = ?
		ORDER BY created_at DESC, rowid DESC`

	queryListTransactionsByStatus = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = ?
		ORDER BY created_at, rowid`

	queryUpdatePendingTransactionStatus = `
		UPDATE transactions
		SET status = ?
		WHERE id = ? AND status = 'pending'`
)
