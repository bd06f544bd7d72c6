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

	"github.com/AnshumPal/icp-vr-marketplace/internal/metrics"
	"github.com/AnshumPal/icp-vr-marketplace/internal/settlement"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"
)

// MarketServiceConfig contains the collaborators of MarketService
type MarketServiceConfig struct {
	Store   store.MarketStore
	Settler *settlement.Settler
	Metrics *metrics.Metrics
}

// MarketService implements the marketplace operations on top of the entity store
type MarketService struct {
	store   store.MarketStore
	settler *settlement.Settler
	metrics *metrics.Metrics
}

func NewMarketService(cfg MarketServiceConfig) *MarketService {
	return &MarketService{
		store:   cfg.Store,
		settler: cfg.Settler,
		metrics: cfg.Metrics,
	}
}

func (s *MarketService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
