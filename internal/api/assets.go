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

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Displayed minting fees. Nothing is deducted from any balance.
var (
	mintingFee  = decimal.RequireFromString("0.001")
	platformFee = decimal.RequireFromString("0.002")
	gasFee      = decimal.RequireFromString("0.0005")
)

const feeCurrency = "ICP"

// MintAsset validates input and creates a new listing owned by ownerId
func (s *MarketService) MintAsset(ctx context.Context, input models.MintAssetInput, ownerId string) (*models.Asset, error) {
	params := store.CreateAssetParams{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		PreviewUrl:  input.PreviewUrl,
		ModelUrl:    input.ModelUrl,
		FileSize:    input.FileSize,
		OwnerId:     ownerId,
	}
	if err := store.ValidateAssetParams(params); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserById(ctx, ownerId); err != nil {
		return nil, err
	}

	asset, err := s.store.CreateAsset(ctx, params)
	if err != nil {
		return nil, err
	}

	s.metrics.AssetMinted()
	zap.L().Info("Asset minted",
		zap.String("asset_id", asset.Id),
		zap.String("owner_id", ownerId),
		zap.String("category", asset.Category),
		zap.String("price", asset.Price))
	return asset, nil
}

// MintQuote returns the fees shown to the user before minting
func (s *MarketService) MintQuote() models.MintQuote {
	return models.MintQuote{
		Currency:    feeCurrency,
		MintingFee:  mintingFee.String(),
		PlatformFee: platformFee.String(),
		GasFee:      gasFee.String(),
		Total:       mintingFee.Add(platformFee).Add(gasFee).String(),
	}
}

func (s *MarketService) GetAsset(ctx context.Context, assetId string) (*models.AssetWithOwner, error) {
	asset, err := s.store.GetAssetById(ctx, assetId)
	if err != nil {
		return nil, err
	}
	withOwners, err := s.attachOwners(ctx, []models.Asset{*asset})
	if err != nil {
		return nil, err
	}
	return &withOwners[0], nil
}

// ListAssets returns the filtered listings with their owners embedded
func (s *MarketService) ListAssets(ctx context.Context, filter store.AssetFilter) ([]models.AssetWithOwner, error) {
	assets, err := s.store.ListAssets(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.attachOwners(ctx, assets)
}

func (s *MarketService) ListAssetsByOwner(ctx context.Context, ownerId string) ([]models.Asset, error) {
	if _, err := s.store.GetUserById(ctx, ownerId); err != nil {
		return nil, err
	}
	return s.store.ListAssetsByOwner(ctx, ownerId)
}

// SetAssetForSale lists or delists an asset on behalf of its current owner
func (s *MarketService) SetAssetForSale(ctx context.Context, assetId, ownerId string, forSale bool) (*models.Asset, error) {
	verr := store.NewValidationError()
	if assetId == "" {
		verr.Add("assetId", "is required")
	}
	if ownerId == "" {
		verr.Add("ownerId", "is required")
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
	if asset.OwnerId != ownerId {
		return nil, fmt.Errorf("%w: asset %s is not owned by %s", store.ErrInvalidState, assetId, ownerId)
	}
	if asset.IsForSale == forSale {
		return asset, nil
	}
	return s.store.SetAssetForSale(ctx, assetId, forSale)
}

func (s *MarketService) attachOwners(ctx context.Context, assets []models.Asset) ([]models.AssetWithOwner, error) {
	owners := make(map[string]*models.User)
	result := make([]models.AssetWithOwner, 0, len(assets))

	for _, asset := range assets {
		owner, cached := owners[asset.OwnerId]
		if !cached {
			user, err := s.store.GetUserById(ctx, asset.OwnerId)
			switch {
			case errors.Is(err, store.ErrNotFound):
				zap.L().Warn("Asset owner missing",
					zap.String("asset_id", asset.Id),
					zap.String("owner_id", asset.OwnerId))
			case err != nil:
				return nil, fmt.Errorf("failed to load owner: %w", err)
			}
			owner = user
			owners[asset.OwnerId] = owner
		}
		result = append(result, models.AssetWithOwner{Asset: asset, Owner: owner})
	}
	return result, nil
}
