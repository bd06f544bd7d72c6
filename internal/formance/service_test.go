package formance

import (
	"context"
	"math/big"
	"testing"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestFormanceAsset(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"ICP", "ICP/8"},
		{"USD", "USD/2"},
		{"ETH", "ETH/18"},
		{"UNKNOWN", "UNKNOWN/8"}, // default precision
	}
	for _, tt := range tests {
		if got := formanceAsset(tt.symbol); got != tt.want {
			t.Errorf("formanceAsset(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestBigIntToDecimal(t *testing.T) {
	// 100_000_000 e8s of ICP = 1.0
	result := bigIntToDecimal(big.NewInt(100_000_000), "ICP")
	if !result.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", result.String())
	}

	result = bigIntToDecimal(big.NewInt(250), "USD")
	if !result.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected 2.5, got %s", result.String())
	}

	// nil should return zero
	result = bigIntToDecimal(nil, "ICP")
	if !result.IsZero() {
		t.Errorf("expected 0, got %s", result.String())
	}
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"ICP/8": {Input: big.NewInt(500), Output: big.NewInt(200)},
		"USD/2": {Input: big.NewInt(1), Output: big.NewInt(1), Balance: big.NewInt(42)},
	}

	if got := volumeBalance(vols, "ICP/8"); got == nil || got.Int64() != 300 {
		t.Errorf("expected 300, got %v", got)
	}
	if got := volumeBalance(vols, "USD/2"); got == nil || got.Int64() != 42 {
		t.Errorf("expected explicit balance 42, got %v", got)
	}
	if got := volumeBalance(vols, "ETH/18"); got != nil {
		t.Errorf("expected nil for missing asset, got %v", got)
	}
}

func TestSaleVars(t *testing.T) {
	tx := models.Transaction{
		Id:              "tx-1",
		AssetId:         "asset-1",
		BuyerId:         "buyer-1",
		SellerId:        "seller-1",
		Price:           "2.50000000",
		TransactionHash: "0xabc",
		Status:          models.StatusCompleted,
	}

	vars, err := saleVars(tx, "ICP")
	if err != nil {
		t.Fatalf("saleVars failed: %v", err)
	}
	if vars["amount"] != "250000000" {
		t.Errorf("amount = %q, want 250000000", vars["amount"])
	}
	if vars["asset"] != "ICP/8" {
		t.Errorf("asset = %q, want ICP/8", vars["asset"])
	}
	if vars["buyer_id"] != "buyer-1" || vars["seller_id"] != "seller-1" {
		t.Errorf("unexpected accounts: %v", vars)
	}
	if vars["price"] != "2.50000000" {
		t.Errorf("price = %q, want submitted text", vars["price"])
	}
}

func TestSaleVars_Rejects(t *testing.T) {
	tx := models.Transaction{Id: "tx-1", Price: "abc", Status: models.StatusCompleted}
	if _, err := saleVars(tx, "ICP"); err == nil {
		t.Error("expected error for invalid price")
	}

	tx = models.Transaction{Id: "tx-1", Price: "1", Status: models.StatusPending}
	if _, err := saleVars(tx, "ICP"); err == nil {
		t.Error("expected error for pending transaction")
	}
}

func TestIsConflictError(t *testing.T) {
	// nil error should not be a conflict
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
}

func TestNewService_RequiresCredentials(t *testing.T) {
	_, err := NewService(context.Background(), models.FormanceConfig{StackURL: "http://localhost:8080"})
	if err == nil {
		t.Error("expected error without client credentials")
	}
}
