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
	"time"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var wallet sql.NullString
	if err := row.Scan(&user.Id, &user.Username, &wallet, &user.Balance, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.WalletAddress = stringPtr(wallet)
	return &user, nil
}

func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	if err := store.ValidateUserParams(params); err != nil {
		return nil, err
	}

	balance := params.Balance
	if balance == "" {
		balance = "0"
	}

	user := &models.User{
		Id:            uuid.New().String(),
		Username:      params.Username,
		WalletAddress: params.WalletAddress,
		Balance:       balance,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, queryInsertUser,
		user.Id, user.Username, nullString(user.WalletAddress), user.Balance, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			zap.L().Info("User already exists",
				zap.String("username", params.Username),
				zap.Stringp("wallet_address", params.WalletAddress))
			return nil, fmt.Errorf("%w: username or wallet address already registered", store.ErrConflict)
		}
		zap.L().Error("Failed to create user", zap.String("username", params.Username), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zap.L().Info("User created",
		zap.String("user_id", user.Id),
		zap.String("username", user.Username))
	return user, nil
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	zap.L().Debug("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByWallet, walletAddress))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no user for wallet %s", store.ErrNotFound, walletAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by wallet: %w", err)
	}
	return user, nil
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, queryCountUsers).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
