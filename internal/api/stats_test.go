package api

import (
	"context"
	"testing"
	"time"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
)

func TestComputeStats_Empty(t *testing.T) {
	env := setupTestService(t, 0)

	stats, err := env.service.ComputeStats(context.Background())
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}
	expected := models.MarketStats{TotalAssets: 0, TotalVolume: "0.00", ActiveUsers: 0, AvgPrice: "0.00"}
	if *stats != expected {
		t.Errorf("Expected %+v, got %+v", expected, *stats)
	}
}

func TestComputeStats_VolumeExcludesPending(t *testing.T) {
	env := setupTestService(t, time.Hour)
	ctx := context.Background()

	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")

	for _, price := range []string{"1.00", "2.00", "3.50"} {
		asset := env.mint(t, seller.Id, "avatars", price)
		tx, err := env.service.Purchase(ctx, asset.Id, buyer.Id)
		if err != nil {
			t.Fatalf("Purchase failed: %v", err)
		}
		if _, err := env.settler.Confirm(ctx, tx.Id); err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
	}
	pendingAsset := env.mint(t, seller.Id, "environments", "5.00")
	if _, err := env.service.Purchase(ctx, pendingAsset.Id, buyer.Id); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	stats, err := env.service.ComputeStats(ctx)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}
	if stats.TotalVolume != "6.50" {
		t.Errorf("Expected volume 6.50, got %s", stats.TotalVolume)
	}
	if stats.TotalAssets != 4 {
		t.Errorf("Expected 4 assets, got %d", stats.TotalAssets)
	}
	if stats.ActiveUsers != 2 {
		t.Errorf("Expected 2 users, got %d", stats.ActiveUsers)
	}
	// (1 + 2 + 3.5 + 5) / 4 = 2.875
	if stats.AvgPrice != "2.88" {
		t.Errorf("Expected average 2.88, got %s", stats.AvgPrice)
	}
}

func TestMarketInsights(t *testing.T) {
	env := setupTestService(t, 0)
	ctx := context.Background()

	owner := env.user(t, "alice")
	for _, a := range []struct{ category, price string }{
		{"avatars", "0.5"},
		{"avatars", "1"},
		{"avatars", "4.99"},
		{"environments", "5"},
	} {
		env.mint(t, owner.Id, a.category, a.price)
	}

	insights, err := env.service.MarketInsights(ctx)
	if err != nil {
		t.Fatalf("MarketInsights failed: %v", err)
	}

	if len(insights.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(insights.Categories))
	}
	if insights.Categories[0].Category != "avatars" || insights.Categories[0].Percentage != "75.0" {
		t.Errorf("Unexpected top category: %+v", insights.Categories[0])
	}

	counts := map[string]int{}
	for _, bucket := range insights.PriceBuckets {
		counts[bucket.Label] = bucket.Count
	}
	expected := map[string]int{"0-1": 1, "1-3": 1, "3-5": 1, "5+": 1}
	for label, count := range expected {
		if counts[label] != count {
			t.Errorf("Bucket %s: expected %d, got %d", label, count, counts[label])
		}
	}
}

func TestPortfolioSummary(t *testing.T) {
	env := setupTestService(t, time.Hour)
	ctx := context.Background()

	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	sold := env.mint(t, seller.Id, "avatars", "2.25")
	kept := env.mint(t, seller.Id, "avatars", "1.10")
	pending := env.mint(t, seller.Id, "avatars", "9")

	tx, err := env.service.Purchase(ctx, sold.Id, buyer.Id)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if _, err := env.settler.Confirm(ctx, tx.Id); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if _, err := env.service.Purchase(ctx, pending.Id, buyer.Id); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	sellerSummary, err := env.service.PortfolioSummary(ctx, seller.Id)
	if err != nil {
		t.Fatalf("PortfolioSummary failed: %v", err)
	}
	if sellerSummary.OwnedAssets != 2 || sellerSummary.SalesRevenue != "2.25" || sellerSummary.CompletedSales != 1 {
		t.Errorf("Unexpected seller summary: %+v", sellerSummary)
	}
	if sellerSummary.PortfolioValue != "10.10" {
		t.Errorf("Expected portfolio value 10.10 (%s kept), got %s", kept.Price, sellerSummary.PortfolioValue)
	}

	buyerSummary, err := env.service.PortfolioSummary(ctx, buyer.Id)
	if err != nil {
		t.Fatalf("PortfolioSummary failed: %v", err)
	}
	if buyerSummary.OwnedAssets != 1 || buyerSummary.PurchaseSpend != "2.25" || buyerSummary.CompletedBuys != 1 || buyerSummary.PendingPurchase != 1 {
		t.Errorf("Unexpected buyer summary: %+v", buyerSummary)
	}
}
