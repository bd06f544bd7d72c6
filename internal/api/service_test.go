package api

import (
	"context"
	"testing"
	"time"

	"github.com/AnshumPal/icp-vr-marketplace/internal/database"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/settlement"
)

type testEnv struct {
	db      *database.Service
	settler *settlement.Settler
	service *MarketService
}

func setupTestService(t *testing.T, delay time.Duration) testEnv {
	t.Helper()

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	settler := settlement.NewSettler(settlement.SettlerConfig{Store: db, ConfirmationDelay: delay})
	t.Cleanup(func() {
		settler.Stop()
		db.Close()
	})

	return testEnv{
		db:      db,
		settler: settler,
		service: NewMarketService(MarketServiceConfig{Store: db, Settler: settler}),
	}
}

func (e testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := e.service.ConnectWallet(context.Background(), "ic-"+username, username)
	if err != nil {
		t.Fatalf("ConnectWallet failed for %s: %v", username, err)
	}
	return user
}

func (e testEnv) mint(t *testing.T, ownerId, category, price string) *models.Asset {
	t.Helper()

	asset, err := e.service.MintAsset(context.Background(), models.MintAssetInput{
		Title:       "Asset " + price,
		Description: "A VR asset",
		Category:    category,
		Price:       price,
		PreviewUrl:  "https://example.com/preview.png",
	}, ownerId)
	if err != nil {
		t.Fatalf("MintAsset failed: %v", err)
	}
	return asset
}

func waitForStatus(t *testing.T, service *MarketService, transactionId string, expected models.TransactionStatus) *models.Transaction {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tx, err := service.GetTransaction(context.Background(), transactionId)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if tx.Status == expected {
			return tx
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Transaction %s did not reach %s", transactionId, expected)
	return nil
}

func TestHealthCheck(t *testing.T) {
	env := setupTestService(t, 0)
	if err := env.service.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
