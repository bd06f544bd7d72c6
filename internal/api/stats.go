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
	"fmt"
	"sort"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"github.com/shopspring/decimal"
)

type priceRange struct {
	label    string
	min, max decimal.Decimal
	open     bool
}

// Buckets are half-open [min, max); the last one has no upper bound
var priceRanges = []priceRange{
	{label: "0-1", min: decimal.Zero, max: decimal.NewFromInt(1)},
	{label: "1-3", min: decimal.NewFromInt(1), max: decimal.NewFromInt(3)},
	{label: "3-5", min: decimal.NewFromInt(3), max: decimal.NewFromInt(5)},
	{label: "5+", min: decimal.NewFromInt(5), open: true},
}

// ComputeStats aggregates the dashboard figures. Volume counts completed
// transactions only; activeUsers is the number of registered users.
func (s *MarketService) ComputeStats(ctx context.Context) (*models.MarketStats, error) {
	assets, err := s.store.ListAssets(ctx, store.AssetFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	completed, err := s.store.ListTransactionsByStatus(ctx, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed transactions: %w", err)
	}
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	volume := decimal.Zero
	for _, tx := range completed {
		volume = volume.Add(tx.PriceDecimal())
	}

	avgPrice := decimal.Zero
	if len(assets) > 0 {
		total := decimal.Zero
		for _, asset := range assets {
			total = total.Add(asset.PriceDecimal())
		}
		avgPrice = total.Div(decimal.NewFromInt(int64(len(assets))))
	}

	return &models.MarketStats{
		TotalAssets: len(assets),
		TotalVolume: volume.StringFixed(2),
		ActiveUsers: users,
		AvgPrice:    avgPrice.StringFixed(2),
	}, nil
}

// MarketInsights returns the category distribution and price buckets of all listings
func (s *MarketService) MarketInsights(ctx context.Context) (*models.MarketInsights, error) {
	assets, err := s.store.ListAssets(ctx, store.AssetFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	counts := make(map[string]int)
	for _, asset := range assets {
		counts[asset.Category]++
	}

	total := decimal.NewFromInt(int64(len(assets)))
	categories := make([]models.CategoryShare, 0, len(counts))
	for category, count := range counts {
		categories = append(categories, models.CategoryShare{
			Category:   category,
			Count:      count,
			Percentage: percentage(count, total),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Category < categories[j].Category
	})

	buckets := make([]models.PriceBucket, len(priceRanges))
	for i, r := range priceRanges {
		buckets[i] = models.PriceBucket{Label: r.label, Min: r.min.String()}
		if !r.open {
			buckets[i].Max = r.max.String()
		}
	}
	for _, asset := range assets {
		price := asset.PriceDecimal()
		for i, r := range priceRanges {
			if price.GreaterThanOrEqual(r.min) && (r.open || price.LessThan(r.max)) {
				buckets[i].Count++
				break
			}
		}
	}

	return &models.MarketInsights{Categories: categories, PriceBuckets: buckets}, nil
}

// PortfolioSummary reports what a user owns and has traded
func (s *MarketService) PortfolioSummary(ctx context.Context, userId string) (*models.PortfolioSummary, error) {
	if _, err := s.store.GetUserById(ctx, userId); err != nil {
		return nil, err
	}

	owned, err := s.store.ListAssetsByOwner(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned assets: %w", err)
	}
	transactions, err := s.store.ListTransactionsByUser(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	summary := &models.PortfolioSummary{UserId: userId, OwnedAssets: len(owned)}

	value := decimal.Zero
	for _, asset := range owned {
		value = value.Add(asset.PriceDecimal())
	}

	revenue, spend := decimal.Zero, decimal.Zero
	for _, tx := range transactions {
		switch {
		case tx.Status == models.StatusCompleted && tx.SellerId == userId:
			revenue = revenue.Add(tx.PriceDecimal())
			summary.CompletedSales++
		case tx.Status == models.StatusCompleted && tx.BuyerId == userId:
			spend = spend.Add(tx.PriceDecimal())
			summary.CompletedBuys++
		case tx.Status == models.StatusPending && tx.BuyerId == userId:
			summary.PendingPurchase++
		}
	}

	summary.PortfolioValue = value.StringFixed(2)
	summary.SalesRevenue = revenue.StringFixed(2)
	summary.PurchaseSpend = spend.StringFixed(2)
	return summary, nil
}

func percentage(count int, total decimal.Decimal) string {
	if total.IsZero() {
		return decimal.Zero.StringFixed(1)
	}
	return decimal.NewFromInt(int64(count)).Mul(decimal.NewFromInt(100)).Div(total).StringFixed(1)
}
