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

// AssetWithOwner is an asset listing with its current owner embedded
type AssetWithOwner struct {
	Asset
	Owner *User `json:"owner"`
}

// MintAssetInput carries the fields a user supplies when minting a listing
type MintAssetInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       string  `json:"price"`
	PreviewUrl  string  `json:"previewUrl"`
	ModelUrl    *string `json:"modelUrl,omitempty"`
	FileSize    *string `json:"fileSize,omitempty"`
}

// MarketStats is the aggregate view shown on the marketplace dashboard
type MarketStats struct {
	TotalAssets int    `json:"totalAssets"`
	TotalVolume string `json:"totalVolume"`
	ActiveUsers int    `json:"activeUsers"`
	AvgPrice    string `json:"avgPrice"`
}

// CategoryShare is the number of listings in one category
type CategoryShare struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// PriceBucket counts listings whose price falls in [Min, Max). Max is empty for the open-ended bucket.
type PriceBucket struct {
	Label string `json:"label"`
	Min   string `json:"min"`
	Max   string `json:"max,omitempty"`
	Count int    `json:"count"`
}

// MarketInsights backs the analytics page
type MarketInsights struct {
	Categories   []CategoryShare `json:"categories"`
	PriceBuckets []PriceBucket   `json:"priceBuckets"`
}

// PortfolioSummary describes a single user's holdings and trading history
type PortfolioSummary struct {
	UserId          string `json:"userId"`
	OwnedAssets     int    `json:"ownedAssets"`
	PortfolioValue  string `json:"portfolioValue"`
	SalesRevenue    string `json:"salesRevenue"`
	PurchaseSpend   string `json:"purchaseSpend"`
	CompletedSales  int    `json:"completedSales"`
	CompletedBuys   int    `json:"completedBuys"`
	PendingPurchase int    `json:"pendingPurchases"`
}

// MintQuote lists the fees displayed when minting. They are informational and never charged.
type MintQuote struct {
	Currency    string `json:"currency"`
	MintingFee  string `json:"mintingFee"`
	PlatformFee string `json:"platformFee"`
	GasFee      string `json:"gasFee"`
	Total       string `json:"total"`
}
