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
	"os"
	"os/signal"
	"syscall"

	"github.com/AnshumPal/icp-vr-marketplace/internal/common"
	"github.com/AnshumPal/icp-vr-marketplace/internal/config"
	"github.com/AnshumPal/icp-vr-marketplace/internal/server"

	"go.uber.org/zap"
)

func main() {
	seedFlag := flag.Bool("seed", false, "Apply the seed file (SEED_FILE) before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting VR marketplace server",
		zap.String("addr", cfg.Server.Addr),
		zap.Duration("confirmation_delay", cfg.Settlement.ConfirmationDelay))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *seedFlag {
		seed, err := common.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			zap.L().Fatal("Failed to load seed file", zap.String("file", cfg.SeedFile), zap.Error(err))
		}
		if _, err := common.ApplySeed(ctx, services.MarketService, seed); err != nil {
			zap.L().Fatal("Failed to apply seed file", zap.Error(err))
		}
	}

	// Reschedule purchases left pending by a previous run
	if err := services.Settler.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start settler", zap.Error(err))
	}

	srv := server.New(cfg.Server, services.MarketService, services.Metrics)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, stopping server...")
	case err := <-serveErr:
		if err != nil {
			zap.L().Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forced HTTP shutdown after timeout", zap.Error(err))
	}

	// services.Close stops the settler; unconfirmed purchases stay pending for the next start
	zap.L().Info("Server stopped")
}
