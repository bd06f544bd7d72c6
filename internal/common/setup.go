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
package common

import (
	"context"
	"log"
	"strings"

	"github.com/AnshumPal/icp-vr-marketplace/internal/api"
	"github.com/AnshumPal/icp-vr-marketplace/internal/database"
	"github.com/AnshumPal/icp-vr-marketplace/internal/formance"
	"github.com/AnshumPal/icp-vr-marketplace/internal/metrics"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/settlement"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService     *database.Service
	LedgerService *formance.Service
	Metrics       *metrics.Metrics
	Settler       *settlement.Settler
	MarketService *api.MarketService
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the store, connects the optional Formance ledger and
// wires the settler and market service. The settler is not started.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	services := &Services{
		DbService: dbService,
		Metrics:   metrics.New(),
	}

	var recorder settlement.Recorder
	if cfg.Formance.Enabled() {
		ledger, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			dbService.Close()
			return nil, err
		}
		services.LedgerService = ledger
		recorder = ledger
	} else {
		zap.L().Info("Formance ledger not configured - completed sales are kept in the local store only")
	}

	services.Settler = settlement.NewSettler(settlement.SettlerConfig{
		Store:             dbService,
		Recorder:          recorder,
		Metrics:           services.Metrics,
		ConfirmationDelay: cfg.Settlement.ConfirmationDelay,
		RecoverPending:    cfg.Settlement.RecoverPending,
	})

	services.MarketService = api.NewMarketService(api.MarketServiceConfig{
		Store:   dbService,
		Settler: services.Settler,
		Metrics: services.Metrics,
	})

	return services, nil
}

// InitializeDatabaseOnly initializes just the database service
// Useful for read-only operations like printing stats
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

// Close stops pending confirmations before closing the store
func (cs *Services) Close() {
	if cs.Settler != nil {
		cs.Settler.Stop()
	}
	if cs.LedgerService != nil {
		cs.LedgerService.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
