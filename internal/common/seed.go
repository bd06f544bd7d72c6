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
	"os"
	"path/filepath"

	"github.com/AnshumPal/icp-vr-marketplace/internal/api"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type SeedUser struct {
	Username      string `yaml:"username"`
	WalletAddress string `yaml:"wallet_address"`
}

type SeedAsset struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	PreviewUrl  string `yaml:"preview_url"`
	ModelUrl    string `yaml:"model_url"`
	FileSize    string `yaml:"file_size"`
	Owner       string `yaml:"owner"` // username of a seed user
}

type SeedFile struct {
	Users  []SeedUser  `yaml:"users"`
	Assets []SeedAsset `yaml:"assets"`
}

// SeedResult counts what ApplySeed created
type SeedResult struct {
	UsersConnected int
	AssetsMinted   int
	AssetsSkipped  int
}

func LoadSeedFile(seedFile string) (*SeedFile, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	return ParseSeed(data)
}

// ParseSeed decodes and checks a YAML seed document
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unable to parse seed file: %w", err)
	}

	usernames := make(map[string]bool, len(seed.Users))
	for i, user := range seed.Users {
		if user.Username == "" {
			return nil, fmt.Errorf("user at index %d missing username", i)
		}
		if user.WalletAddress == "" {
			return nil, fmt.Errorf("user at index %d missing wallet_address", i)
		}
		usernames[user.Username] = true
	}

	for i, asset := range seed.Assets {
		if asset.Title == "" {
			return nil, fmt.Errorf("asset at index %d missing title", i)
		}
		if !usernames[asset.Owner] {
			return nil, fmt.Errorf("asset %q has unknown owner %q", asset.Title, asset.Owner)
		}
	}

	return &seed, nil
}

// ApplySeed connects the seed users and mints their assets. Assets whose title
// is already listed are skipped regardless of the current owner, so a seed can
// be applied repeatedly, also after seeded assets have changed hands.
func ApplySeed(ctx context.Context, service *api.MarketService, seed *SeedFile) (*SeedResult, error) {
	result := &SeedResult{}
	owners := make(map[string]*models.User, len(seed.Users))

	for _, u := range seed.Users {
		user, err := service.ConnectWallet(ctx, u.WalletAddress, u.Username)
		if err != nil {
			return result, fmt.Errorf("failed to connect seed user %s: %w", u.Username, err)
		}
		owners[u.Username] = user
		result.UsersConnected++
	}

	existing, err := service.ListAssets(ctx, store.AssetFilter{})
	if err != nil {
		return result, fmt.Errorf("failed to list assets: %w", err)
	}
	titles := listedTitles(existing)

	for _, a := range seed.Assets {
		owner := owners[a.Owner]

		if titles[a.Title] {
			zap.L().Debug("Seed asset already present", zap.String("title", a.Title), zap.String("owner", a.Owner))
			result.AssetsSkipped++
			continue
		}

		_, err = service.MintAsset(ctx, models.MintAssetInput{
			Title:       a.Title,
			Description: a.Description,
			Category:    a.Category,
			Price:       a.Price,
			PreviewUrl:  a.PreviewUrl,
			ModelUrl:    optional(a.ModelUrl),
			FileSize:    optional(a.FileSize),
		}, owner.Id)
		if err != nil {
			return result, fmt.Errorf("failed to mint seed asset %q: %w", a.Title, err)
		}
		titles[a.Title] = true
		result.AssetsMinted++
	}

	zap.L().Info("Seed applied",
		zap.Int("users", result.UsersConnected),
		zap.Int("assets_minted", result.AssetsMinted),
		zap.Int("assets_skipped", result.AssetsSkipped))
	return result, nil
}

func listedTitles(assets []models.AssetWithOwner) map[string]bool {
	titles := make(map[string]bool, len(assets))
	for _, asset := range assets {
		titles[asset.Title] = true
	}
	return titles
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
