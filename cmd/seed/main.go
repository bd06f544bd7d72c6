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

	"go.uber.org/zap"
)

func main() {
	fileFlag := flag.String("file", "", "Path to the seed YAML file (default: SEED_FILE)")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	seedFile := cfg.SeedFile
	if *fileFlag != "" {
		seedFile = *fileFlag
	}

	seed, err := common.LoadSeedFile(seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed file", zap.String("file", seedFile), zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := common.ApplySeed(ctx, services.MarketService, seed)
	if err != nil {
		zap.L().Fatal("Failed to apply seed", zap.Error(err))
	}

	common.PrintFooter(fmt.Sprintf("SEED COMPLETE: %d users connected, %d assets minted, %d already present",
		result.UsersConnected, result.AssetsMinted, result.AssetsSkipped), common.DefaultWidth)
}
