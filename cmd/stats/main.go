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
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/AnshumPal/icp-vr-marketplace/internal/common"
	"github.com/AnshumPal/icp-vr-marketplace/internal/config"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"

	"go.uber.org/zap"
)

type reportStats struct {
	totalUsers      int
	usersWithAssets int
	totalOwned      int
}

func printMarketStats(stats *models.MarketStats, currency string) {
	common.PrintRow("Total assets", stats.TotalAssets)
	common.PrintRow("Total volume", common.FormatAmount(stats.TotalVolume, currency))
	common.PrintRow("Active users", stats.ActiveUsers)
	common.PrintRow("Average price", common.FormatAmount(stats.AvgPrice, currency))
}

func printInsights(insights *models.MarketInsights, currency string) {
	fmt.Println("\nCategories")
	for i, share := range insights.Categories {
		fmt.Printf("%s %-20s %4d (%s%%)\n", common.BoxPrefix(i == len(insights.Categories)-1), share.Category, share.Count, share.Percentage)
	}
	fmt.Println("\nPrice ranges")
	for i, bucket := range insights.PriceBuckets {
		fmt.Printf("%s %-20s %4d\n", common.BoxPrefix(i == len(insights.PriceBuckets)-1), bucket.Label+" "+currency, bucket.Count)
	}
}

func printPortfolio(user common.UserInfo, summary *models.PortfolioSummary, currency string, isLast bool) {
	detail := common.BoxDetailPrefix(isLast)
	fmt.Printf("%s%s (%s) wallet=%s\n", common.BoxPrefix(isLast), user.Username, common.ShortId(user.Id), user.WalletAddress)
	fmt.Printf("%s  owned=%d value=%s\n", detail, summary.OwnedAssets, common.FormatAmount(summary.PortfolioValue, currency))
	fmt.Printf("%s  sales=%d revenue=%s buys=%d spend=%s pending=%d\n", detail,
		summary.CompletedSales, common.FormatAmount(summary.SalesRevenue, currency),
		summary.CompletedBuys, common.FormatAmount(summary.PurchaseSpend, currency),
		summary.PendingPurchase)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	walletFlag := flag.String("wallet", "", "Filter by specific wallet address (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	service := services.MarketService
	currency := cfg.Formance.Currency

	common.PrintHeader("MARKET REPORT", common.DefaultWidth)

	stats, err := service.ComputeStats(ctx)
	if err != nil {
		zap.L().Fatal("Failed to compute stats", zap.Error(err))
	}
	printMarketStats(stats, currency)

	insights, err := service.MarketInsights(ctx)
	if err != nil {
		zap.L().Fatal("Failed to compute insights", zap.Error(err))
	}
	printInsights(insights, currency)

	users, err := common.InitializeUsers(ctx, services.DbService, *walletFlag)
	if err != nil {
		zap.L().Fatal("Failed to initialize users", zap.Error(err))
	}

	fmt.Println("\nPortfolios")
	report := reportStats{}
	for i, user := range users {
		report.totalUsers++
		summary, err := service.PortfolioSummary(ctx, user.Id)
		if err != nil {
			zap.L().Error("Failed to summarize portfolio",
				zap.String("user_id", user.Id),
				zap.String("username", user.Username),
				zap.Error(err))
			continue
		}
		if summary.OwnedAssets > 0 {
			report.usersWithAssets++
			report.totalOwned += summary.OwnedAssets
		}
		printPortfolio(user, summary, currency, i == len(users)-1)

		if services.LedgerService != nil {
			balance, err := services.LedgerService.GetUserBalance(ctx, user.Id)
			if err != nil {
				zap.L().Warn("Failed to read ledger balance", zap.String("user_id", user.Id), zap.Error(err))
				continue
			}
			fmt.Printf("%s  ledger=%s\n", common.BoxDetailPrefix(i == len(users)-1),
				common.FormatAmount(balance.String(), currency))
		}
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d of %d users hold assets (%d listings owned)",
		report.usersWithAssets, report.totalUsers, report.totalOwned), common.DefaultWidth)
}
