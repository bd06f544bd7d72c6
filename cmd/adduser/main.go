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
	"os"

	"github.com/AnshumPal/icp-vr-marketplace/internal/common"
	"github.com/AnshumPal/icp-vr-marketplace/internal/config"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"go.uber.org/zap"
)

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) < 2 {
		return fmt.Errorf("username must be at least 2 characters")
	}
	return nil
}

func main() {
	usernameFlag := flag.String("username", "", "Username for the new user (required)")
	walletFlag := flag.String("wallet", "", "Wallet address to bind (optional)")
	balanceFlag := flag.String("balance", "0", "Opening balance as a decimal string")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if err := validateUsername(*usernameFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\nUsage:\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	params := store.CreateUserParams{
		Username: *usernameFlag,
		Balance:  *balanceFlag,
	}
	if *walletFlag != "" {
		params.WalletAddress = walletFlag
	}

	user, err := dbService.CreateUser(ctx, params)
	if err != nil {
		zap.L().Error("Failed to create user", zap.String("username", *usernameFlag), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		os.Exit(1)
	}

	common.PrintHeader("USER CREATED", common.DefaultWidth)
	common.PrintRow("Id", user.Id)
	common.PrintRow("Username", user.Username)
	if user.WalletAddress != nil {
		common.PrintRow("Wallet", *user.WalletAddress)
	}
	common.PrintRow("Balance", common.FormatAmount(user.Balance, "ICP"))
	common.PrintSeparator("=", common.DefaultWidth)
}
