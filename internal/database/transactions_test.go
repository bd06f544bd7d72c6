package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/store"
)

type tradeFixture struct {
	seller *models.User
	buyer  *models.User
	asset  *models.Asset
}

func setupTrade(t *testing.T, service *Service) tradeFixture {
	t.Helper()

	seller := createTestUser(t, service, "seller", "")
	buyer := createTestUser(t, service, "buyer", "")
	asset := createTestAsset(t, service, seller.Id, "Cyber Helmet", "avatars", "2.5")
	return tradeFixture{seller: seller, buyer: buyer, asset: asset}
}

func createPending(t *testing.T, service *Service, f tradeFixture, buyerId string) *models.Transaction {
	t.Helper()

	tx, err := service.CreateTransaction(context.Background(), store.CreateTransactionParams{
		AssetId:  f.asset.Id,
		BuyerId:  buyerId,
		SellerId: f.seller.Id,
		Price:    f.asset.Price,
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	return tx
}

func TestCreateTransaction(t *testing.T) {
	service := setupTestDb(t)
	f := setupTrade(t, service)

	tx := createPending(t, service, f, f.buyer.Id)
	if tx.Status != models.StatusPending {
		t.Errorf("Expected pending status, got %s", tx.Status)
	}
	if !strings.HasPrefix(tx.TransactionHash, "0x") || len(tx.TransactionHash) != 34 {
		t.Errorf("Unexpected transaction hash %q", tx.TransactionHash)
	}

	loaded, err := service.GetTransactionById(context.Background(), tx.Id)
	if err != nil {
		t.Fatalf("GetTransactionById failed: %v", err)
	}
	if loaded.Price != "2.5" || loaded.SellerId != f.seller.Id {
		t.Errorf("Unexpected transaction: %+v", loaded)
	}
}

func TestCreateTransaction_Errors(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()
	f := setupTrade(t, service)

	_, err := service.CreateTransaction(ctx, store.CreateTransactionParams{
		AssetId:  f.asset.Id,
		BuyerId:  f.seller.Id,
		SellerId: f.seller.Id,
		Price:    "1",
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for buyer == seller, got %v", err)
	}

	_, err = service.CreateTransaction(ctx, store.CreateTransactionParams{
		AssetId:  "missing",
		BuyerId:  f.buyer.Id,
		SellerId: f.seller.Id,
		Price:    "1",
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown asset, got %v", err)
	}

	first := createPending(t, service, f, f.buyer.Id)
	_, err = service.CreateTransaction(ctx, store.CreateTransactionParams{
		AssetId:         f.asset.Id,
		BuyerId:         f.buyer.Id,
		SellerId:        f.seller.Id,
		Price:           "1",
		TransactionHash: first.TransactionHash,
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate hash, got %v", err)
	}
}

func TestSetTransactionStatus(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()
	f := setupTrade(t, service)

	tx := createPending(t, service, f, f.buyer.Id)

	if _, err := service.SetTransactionStatus(ctx, tx.Id, models.StatusPending); !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for pending target, got %v", err)
	}

	// Completing without the ownership move is refused
	if _, err := service.SetTransactionStatus(ctx, tx.Id, models.StatusCompleted); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	failed, err := service.SetTransactionStatus(ctx, tx.Id, models.StatusFailed)
	if err != nil {
		t.Fatalf("SetTransactionStatus failed: %v", err)
	}
	if failed.Status != models.StatusFailed {
		t.Errorf("Expected failed status, got %s", failed.Status)
	}

	// Terminal statuses never change again
	if _, err := service.SetTransactionStatus(ctx, tx.Id, models.StatusFailed); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for terminal transaction, got %v", err)
	}
	if _, err := service.SetTransactionStatus(ctx, "missing", models.StatusFailed); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCompleteTransfer(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()
	f := setupTrade(t, service)

	tx := createPending(t, service, f, f.buyer.Id)

	completed, err := service.CompleteTransfer(ctx, tx.Id)
	if err != nil {
		t.Fatalf("CompleteTransfer failed: %v", err)
	}
	if completed.Status != models.StatusCompleted {
		t.Errorf("Expected completed status, got %s", completed.Status)
	}

	asset, err := service.GetAssetById(ctx, f.asset.Id)
	if err != nil {
		t.Fatalf("GetAssetById failed: %v", err)
	}
	if asset.OwnerId != f.buyer.Id {
		t.Errorf("Expected owner %s, got %s", f.buyer.Id, asset.OwnerId)
	}
	if !asset.IsForSale {
		t.Error("Expected asset to stay listed after purchase")
	}

	if _, err := service.CompleteTransfer(ctx, tx.Id); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for second confirmation, got %v", err)
	}
	if _, err := service.CompleteTransfer(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCompleteTransfer_OwnerChanged(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()
	f := setupTrade(t, service)
	rival := createTestUser(t, service, "rival", "")

	first := createPending(t, service, f, f.buyer.Id)
	second := createPending(t, service, f, rival.Id)

	if _, err := service.CompleteTransfer(ctx, first.Id); err != nil {
		t.Fatalf("CompleteTransfer failed: %v", err)
	}

	// The seller snapshot on the second purchase no longer owns the asset
	_, err := service.CompleteTransfer(ctx, second.Id)
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Fatalf("Expected ErrConcurrentModification, got %v", err)
	}

	loaded, err := service.GetTransactionById(ctx, second.Id)
	if err != nil {
		t.Fatalf("GetTransactionById failed: %v", err)
	}
	if loaded.Status != models.StatusPending {
		t.Errorf("Expected rejected transfer to leave status pending, got %s", loaded.Status)
	}

	asset, err := service.GetAssetById(ctx, f.asset.Id)
	if err != nil {
		t.Fatalf("GetAssetById failed: %v", err)
	}
	if asset.OwnerId != f.buyer.Id {
		t.Errorf("Expected owner to remain %s, got %s", f.buyer.Id, asset.OwnerId)
	}
}

func TestListTransactions(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()
	f := setupTrade(t, service)
	outsider := createTestUser(t, service, "outsider", "")

	first := createPending(t, service, f, f.buyer.Id)
	second := createPending(t, service, f, f.buyer.Id)
	if _, err := service.SetTransactionStatus(ctx, first.Id, models.StatusFailed); err != nil {
		t.Fatalf("SetTransactionStatus failed: %v", err)
	}

	for _, userId := range []string{f.buyer.Id, f.seller.Id} {
		txs, err := service.ListTransactionsByUser(ctx, userId)
		if err != nil {
			t.Fatalf("ListTransactionsByUser failed: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("Expected 2 transactions for %s, got %d", userId, len(txs))
		}
		if txs[0].Id != second.Id {
			t.Errorf("Expected newest transaction first, got %s", txs[0].Id)
		}
	}

	txs, err := service.ListTransactionsByUser(ctx, outsider.Id)
	if err != nil {
		t.Fatalf("ListTransactionsByUser failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("Expected no transactions, got %d", len(txs))
	}

	pending, err := service.ListTransactionsByStatus(ctx, models.StatusPending)
	if err != nil {
		t.Fatalf("ListTransactionsByStatus failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Id != second.Id {
		t.Errorf("Expected only %s pending, got %+v", second.Id, pending)
	}
}
