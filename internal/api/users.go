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
	"strings"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"go.uber.org/zap"
)

// ConnectWallet returns the user bound to walletAddress, creating it on first
// connection. Repeated or concurrent connects with the same wallet resolve to
// the same user.
func (s *MarketService) ConnectWallet(ctx context.Context, walletAddress, username string) (*models.User, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	username = strings.TrimSpace(username)

	verr := store.NewValidationError()
	if walletAddress == "" {
		verr.Add("walletAddress", "is required")
	}
	if username == "" {
		verr.Add("username", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByWallet(ctx, walletAddress)
	if err == nil {
		zap.L().Debug("Wallet already connected",
			zap.String("wallet_address", walletAddress),
			zap.String("user_id", user.Id))
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}

	user, err = s.store.CreateUser(ctx, store.CreateUserParams{
		Username:      username,
		WalletAddress: &walletAddress,
	})
	if errors.Is(err, store.ErrConflict) {
		// Lost a race with a concurrent connect for the same wallet, or the username is taken
		existing, getErr := s.store.GetUserByWallet(ctx, walletAddress)
		if getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("Wallet connected",
		zap.String("wallet_address", walletAddress),
		zap.String("user_id", user.Id),
		zap.String("username", user.Username))
	return user, nil
}

func (s *MarketService) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	return s.store.GetUserByWallet(ctx, walletAddress)
}

func (s *MarketService) GetUser(ctx context.Context, userId string) (*models.User, error) {
	return s.store.GetUserById(ctx, userId)
}
