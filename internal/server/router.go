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
package server

import (
	"github.com/AnshumPal/icp-vr-marketplace/internal/api"
	"github.com/AnshumPal/icp-vr-marketplace/internal/metrics"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the marketplace routes
func NewRouter(cfg models.ServerConfig, service *api.MarketService, m *metrics.Metrics) *gin.Engine {
	r := gin.New()

	r.Use(recovery())
	r.Use(requestLogger(m))

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: !containsWildcard(allowOrigins),
		MaxAge:           12 * 3600,
	}))

	h := NewMarketHandler(service)

	r.GET("/healthz", h.Health)
	if registry := m.Registry(); registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	apiGroup := r.Group("/api")
	{
		assets := apiGroup.Group("/assets")
		{
			assets.GET("", h.ListAssets)
			assets.POST("", h.MintAsset)
			assets.GET("/:id", h.GetAsset)
			assets.PUT("/:id/listing", h.SetListing)
		}

		market := apiGroup.Group("/market")
		{
			market.GET("/stats", h.MarketStats)
			market.GET("/insights", h.MarketInsights)
			market.GET("/fees", h.MintQuote)
		}

		wallet := apiGroup.Group("/wallet")
		{
			wallet.POST("/connect", h.ConnectWallet)
			wallet.GET("/:address", h.GetWallet)
		}

		users := apiGroup.Group("/users/:id")
		{
			users.GET("/assets", h.UserAssets)
			users.GET("/transactions", h.UserTransactions)
			users.GET("/portfolio", h.UserPortfolio)
		}

		transactions := apiGroup.Group("/transactions")
		{
			transactions.POST("/purchase", h.Purchase)
			transactions.GET("/:id", h.GetTransaction)
		}
	}

	return r
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
