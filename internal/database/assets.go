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

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanAsset(row rowScanner) (*models.Asset, error) {
	var asset models.Asset
	var modelUrl, fileSize sql.NullString
	err := row.Scan(&asset.Id, &asset.Title, &asset.Description, &asset.Category, &asset.Price,
		&asset.PreviewUrl, &modelUrl, &fileSize, &asset.OwnerId, &asset.IsForSale,
		&asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		return nil, err
	}
	asset.ModelUrl = stringPtr(modelUrl)
	asset.FileSize = stringPtr(fileSize)
	return &asset, nil
}

func (s *Service) queryAssets(ctx context.Context, query string, args ...any) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		zap.L().Error("Failed to query assets", zap.Error(err))
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer closeRows(rows)

	assets := []models.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during asset row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating asset rows: %w", err)
	}
	return assets, nil
}

func (s *Service) CreateAsset(ctx context.Context, params store.CreateAssetParams) (*models.Asset, error) {
	if err := store.ValidateAssetParams(params); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	asset := &models.Asset{
		Id:          uuid.New().String(),
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Price:       params.Price,
		PreviewUrl:  params.PreviewUrl,
		ModelUrl:    params.ModelUrl,
		FileSize:    params.FileSize,
		OwnerId:     params.OwnerId,
		IsForSale:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, queryInsertAsset,
		asset.Id, asset.Title, asset.Description, asset.Category, asset.Price, asset.PreviewUrl,
		nullString(asset.ModelUrl), nullString(asset.FileSize), asset.OwnerId, asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: owner %s", store.ErrNotFound, params.OwnerId)
		}
		zap.L().Error("Failed to insert asset", zap.String("title", params.Title), zap.Error(err))
		return nil, fmt.Errorf("failed to insert asset: %w", err)
	}

	zap.L().Info("Asset created",
		zap.String("asset_id", asset.Id),
		zap.String("owner_id", asset.OwnerId),
		zap.String("price", asset.Price))
	return asset, nil
}

func (s *Service) GetAssetById(ctx context.Context, assetId string) (*models.Asset, error) {
	asset, err := scanAsset(s.db.QueryRowContext(ctx, queryGetAssetById, assetId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: asset %s", store.ErrNotFound, assetId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

// ListAssets returns listings newest-first unless filter.Sort asks for a price ordering.
// Price bounds and price ordering are evaluated with exact decimals in Go, not in SQL.
func (s *Service) ListAssets(ctx context.Context, filter store.AssetFilter) ([]models.Asset, error) {
	var minPrice, maxPrice *decimal.Decimal
	verr := store.NewValidationError()
	if filter.MinPrice != "" {
		if d, err := decimal.NewFromString(filter.MinPrice); err != nil {
			verr.Add("minPrice", "must be a decimal")
		} else {
			minPrice = &d
		}
	}
	if filter.MaxPrice != "" {
		if d, err := decimal.NewFromString(filter.MaxPrice); err != nil {
			verr.Add("maxPrice", "must be a decimal")
		} else {
			maxPrice = &d
		}
	}
	switch filter.Sort {
	case "", store.SortRecent, store.SortPriceLow, store.SortPriceHigh:
	default:
		verr.Add("sort", fmt.Sprintf("unsupported sort %q", filter.Sort))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var assets []models.Asset
	var err error
	if filter.Category != "" {
		assets, err = s.queryAssets(ctx, queryListAssetsByCategory, filter.Category)
	} else {
		assets, err = s.queryAssets(ctx, queryListAssets)
	}
	if err != nil {
		return nil, err
	}

	if minPrice != nil || maxPrice != nil {
		filtered := assets[:0]
		for _, asset := range assets {
			price := asset.PriceDecimal()
			if minPrice != nil && price.LessThan(*minPrice) {
				continue
			}
			if maxPrice != nil && price.GreaterThan(*maxPrice) {
				continue
			}
			filtered = append(filtered, asset)
		}
		assets = filtered
	}

	switch filter.Sort {
	case store.SortPriceLow:
		sort.SliceStable(assets, func(i, j int) bool {
			return assets[i].PriceDecimal().LessThan(assets[j].PriceDecimal())
		})
	case store.SortPriceHigh:
		sort.SliceStable(assets, func(i, j int) bool {
			return assets[i].PriceDecimal().GreaterThan(assets[j].PriceDecimal())
		})
	}

	return assets, nil
}

func (s *Service) ListAssetsByOwner(ctx context.Context, ownerId string) ([]models.Asset, error) {
	return s.queryAssets(ctx, queryListAssetsByOwner, ownerId)
}

func (s *Service) SetAssetOwner(ctx context.Context, assetId, newOwnerId string) (*models.Asset, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	result, err := tx.ExecContext(ctx, queryUpdateAssetOwner, newOwnerId, time.Now().UTC(), assetId)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, newOwnerId)
		}
		return nil, fmt.Errorf("failed to update asset owner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: asset %s", store.ErrNotFound, assetId)
	}

	asset, err := scanAsset(tx.QueryRowContext(ctx, queryGetAssetById, assetId))
	if err != nil {
		return nil, fmt.Errorf("failed to reload asset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Asset owner updated",
		zap.String("asset_id", assetId),
		zap.String("owner_id", newOwnerId))
	return asset, nil
}

// SetAssetForSale lists or delists an asset. A delisted asset rejects new
// purchases and fails the confirmation of purchases still pending on it.
func (s *Service) SetAssetForSale(ctx context.Context, assetId string, forSale bool) (*models.Asset, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	result, err := tx.ExecContext(ctx, queryUpdateAssetForSale, forSale, time.Now().UTC(), assetId)
	if err != nil {
		return nil, fmt.Errorf("failed to update asset listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: asset %s", store.ErrNotFound, assetId)
	}

	asset, err := scanAsset(tx.QueryRowContext(ctx, queryGetAssetById, assetId))
	if err != nil {
		return nil, fmt.Errorf("failed to reload asset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Asset listing updated",
		zap.String("asset_id", assetId),
		zap.Bool("is_for_sale", forSale))
	return asset, nil
}
