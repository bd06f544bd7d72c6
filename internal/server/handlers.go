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
	"net/http"

	"github.com/AnshumPal/icp-vr-marketplace/internal/api"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"github.com/gin-gonic/gin"
)

// ConnectWalletRequest is the body of POST /api/wallet/connect
type ConnectWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
	Username      string `json:"username"`
}

// MintAssetRequest is the body of POST /api/assets
type MintAssetRequest struct {
	models.MintAssetInput
	OwnerId string `json:"ownerId"`
}

// PurchaseRequest is the body of POST /api/transactions/purchase
type PurchaseRequest struct {
	AssetId string `json:"assetId"`
	BuyerId string `json:"buyerId"`
}

// ListingRequest is the body of PUT /api/assets/:id/listing
type ListingRequest struct {
	OwnerId   string `json:"ownerId"`
	IsForSale *bool  `json:"isForSale"`
}

// MarketHandler serves the marketplace API
type MarketHandler struct {
	service *api.MarketService
}

func NewMarketHandler(service *api.MarketService) *MarketHandler {
	return &MarketHandler{service: service}
}

func (h *MarketHandler) ListAssets(c *gin.Context) {
	filter := store.AssetFilter{
		Category: c.Query("category"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		Sort:     store.AssetSort(c.Query("sort")),
	}
	if filter.Category == "all" {
		filter.Category = ""
	}

	assets, err := h.service.ListAssets(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, assets)
}

func (h *MarketHandler) GetAsset(c *gin.Context) {
	asset, err := h.service.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, asset)
}

func (h *MarketHandler) MintAsset(c *gin.Context) {
	var req MintAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParam(c, "Invalid asset data")
		return
	}

	asset, err := h.service.MintAsset(c.Request.Context(), req.MintAssetInput, req.OwnerId)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, asset)
}

func (h *MarketHandler) SetListing(c *gin.Context) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsForSale == nil {
		invalidParam(c, "Invalid listing data")
		return
	}

	asset, err := h.service.SetAssetForSale(c.Request.Context(), c.Param("id"), req.OwnerId, *req.IsForSale)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, asset)
}

func (h *MarketHandler) MarketStats(c *gin.Context) {
	stats, err := h.service.ComputeStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, stats)
}

func (h *MarketHandler) MarketInsights(c *gin.Context) {
	insights, err := h.service.MarketInsights(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, insights)
}

func (h *MarketHandler) MintQuote(c *gin.Context) {
	success(c, h.service.MintQuote())
}

func (h *MarketHandler) ConnectWallet(c *gin.Context) {
	var req ConnectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParam(c, "Invalid wallet data")
		return
	}

	user, err := h.service.ConnectWallet(c.Request.Context(), req.WalletAddress, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, user)
}

func (h *MarketHandler) GetWallet(c *gin.Context) {
	user, err := h.service.GetUserByWallet(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, user)
}

func (h *MarketHandler) UserAssets(c *gin.Context) {
	assets, err := h.service.ListAssetsByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, assets)
}

func (h *MarketHandler) UserTransactions(c *gin.Context) {
	transactions, err := h.service.ListTransactionsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, transactions)
}

func (h *MarketHandler) UserPortfolio(c *gin.Context) {
	summary, err := h.service.PortfolioSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, summary)
}

func (h *MarketHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParam(c, "Invalid purchase data")
		return
	}

	tx, err := h.service.Purchase(c.Request.Context(), req.AssetId, req.BuyerId)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, tx)
}

func (h *MarketHandler) GetTransaction(c *gin.Context) {
	tx, err := h.service.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, tx)
}

func (h *MarketHandler) Health(c *gin.Context) {
	if err := h.service.HealthCheck(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
