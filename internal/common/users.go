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
	"fmt"

	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"go.uber.org/zap"
)

// UserInfo represents simplified user information for command-line utilities
type UserInfo struct {
	Id            string
	Username      string
	WalletAddress string
	Balance       string
}

// InitializeUsers retrieves users based on an optional wallet filter.
// If walletFilter is provided, returns the single user bound to that wallet.
// If walletFilter is empty, returns all users.
func InitializeUsers(ctx context.Context, dbService store.MarketStore, walletFilter string) ([]UserInfo, error) {
	var users []UserInfo

	if walletFilter != "" {
		zap.L().Info("Looking up user by wallet", zap.String("wallet_address", walletFilter))
		user, err := dbService.GetUserByWallet(ctx, walletFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, UserInfo{
			Id:            user.Id,
			Username:      user.Username,
			WalletAddress: walletFilter,
			Balance:       user.Balance,
		})
	} else {
		allUsers, err := dbService.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		for _, u := range allUsers {
			info := UserInfo{Id: u.Id, Username: u.Username, Balance: u.Balance}
			if u.WalletAddress != nil {
				info.WalletAddress = *u.WalletAddress
			}
			users = append(users, info)
		}
	}

	zap.L().Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
