package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshumPal/icp-vr-marketplace/internal/api"
	"github.com/AnshumPal/icp-vr-marketplace/internal/database"
	"github.com/AnshumPal/icp-vr-marketplace/internal/metrics"
	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
	"github.com/AnshumPal/icp-vr-marketplace/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	settler *settlement.Settler
}

func setupTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)

	m := metrics.New()
	settler := settlement.NewSettler(settlement.SettlerConfig{Store: db, Metrics: m, ConfirmationDelay: time.Hour})
	t.Cleanup(func() {
		settler.Stop()
		db.Close()
	})

	service := api.NewMarketService(api.MarketServiceConfig{Store: db, Settler: settler, Metrics: m})
	srv := New(models.ServerConfig{Addr: ":0"}, service, m)
	return testServer{handler: srv.Handler(), settler: settler}
}

func (s testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s testServer) connect(t *testing.T, wallet, username string) models.User {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/wallet/connect", ConnectWalletRequest{WalletAddress: wallet, Username: username})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.User](t, rec)
}

func (s testServer) mint(t *testing.T, ownerId, price string) models.Asset {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/assets", map[string]string{
		"title":       "Neon Helmet",
		"description": "Glowing headgear",
		"category":    "avatars",
		"price":       price,
		"previewUrl":  "https://example.com/helmet.png",
		"ownerId":     ownerId,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Asset](t, rec)
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vr_marketplace_http_requests_total")
}

func TestWalletRoutes(t *testing.T) {
	s := setupTestServer(t)

	first := s.connect(t, "ic1234abcd", "cyberpunk_dev")
	second := s.connect(t, "ic1234abcd", "cyberpunk_dev")
	assert.Equal(t, first.Id, second.Id)

	rec := s.do(t, http.MethodGet, "/api/wallet/ic1234abcd", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"walletAddress":"ic1234abcd"`)

	rec = s.do(t, http.MethodGet, "/api/wallet/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/wallet/connect", ConnectWalletRequest{WalletAddress: "ic-other", Username: "cyberpunk_dev"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMintAsset_ValidationErrors(t *testing.T) {
	s := setupTestServer(t)
	owner := s.connect(t, "ic-owner", "owner")

	rec := s.do(t, http.MethodPost, "/api/assets", map[string]string{
		"title":   "",
		"price":   "abc",
		"ownerId": owner.Id,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[ErrorResponse](t, rec)
	assert.Contains(t, body.Errors, "title")
	assert.Contains(t, body.Errors, "price")
	assert.Contains(t, body.Errors, "previewUrl")

	rec = s.do(t, http.MethodPost, "/api/assets", map[string]string{
		"title":       "t",
		"description": "d",
		"category":    "c",
		"price":       "1",
		"previewUrl":  "p",
		"ownerId":     "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/assets", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestAssetRoutes(t *testing.T) {
	s := setupTestServer(t)
	owner := s.connect(t, "ic-owner", "owner")

	asset := s.mint(t, owner.Id, "2.50000000")
	assert.Equal(t, "2.50000000", asset.Price)
	assert.True(t, asset.IsForSale)

	rec := s.do(t, http.MethodGet, "/api/assets/"+asset.Id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withOwner := decode[models.AssetWithOwner](t, rec)
	assert.Equal(t, "2.50000000", withOwner.Price)
	require.NotNil(t, withOwner.Owner)
	assert.Equal(t, owner.Id, withOwner.Owner.Id)

	rec = s.do(t, http.MethodGet, "/api/assets?category=all&sort=price-low", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.AssetWithOwner](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/assets?sort=popular", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/assets/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/"+owner.Id+"/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Asset](t, rec), 1)
}

func TestPurchaseRoutes(t *testing.T) {
	s := setupTestServer(t)
	seller := s.connect(t, "ic-seller", "seller")
	buyer := s.connect(t, "ic-buyer", "buyer")
	asset := s.mint(t, seller.Id, "3")

	rec := s.do(t, http.MethodPost, "/api/transactions/purchase", PurchaseRequest{AssetId: asset.Id, BuyerId: seller.Id})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/transactions/purchase", PurchaseRequest{AssetId: "missing", BuyerId: buyer.Id})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/transactions/purchase", PurchaseRequest{AssetId: asset.Id, BuyerId: buyer.Id})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[models.Transaction](t, rec)
	assert.Equal(t, models.StatusPending, tx.Status)
	assert.Equal(t, seller.Id, tx.SellerId)

	_, err := s.settler.Confirm(context.Background(), tx.Id)
	require.NoError(t, err)

	rec = s.do(t, http.MethodGet, "/api/transactions/"+tx.Id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCompleted, decode[models.Transaction](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/api/users/"+buyer.Id+"/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Transaction](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/users/"+buyer.Id+"/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	portfolio := decode[models.PortfolioSummary](t, rec)
	assert.Equal(t, 1, portfolio.OwnedAssets)
	assert.Equal(t, "3.00", portfolio.PurchaseSpend)

	rec = s.do(t, http.MethodGet, "/api/market/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.MarketStats](t, rec)
	assert.Equal(t, "3.00", stats.TotalVolume)
	assert.Equal(t, 2, stats.ActiveUsers)
}

func TestListingRoute(t *testing.T) {
	s := setupTestServer(t)
	seller := s.connect(t, "ic-seller", "seller")
	buyer := s.connect(t, "ic-buyer", "buyer")
	asset := s.mint(t, seller.Id, "2")

	forSale := false
	rec := s.do(t, http.MethodPut, "/api/assets/"+asset.Id+"/listing", ListingRequest{OwnerId: buyer.Id, IsForSale: &forSale})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/assets/"+asset.Id+"/listing", map[string]string{"ownerId": seller.Id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/assets/"+asset.Id+"/listing", ListingRequest{OwnerId: seller.Id, IsForSale: &forSale})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[models.Asset](t, rec).IsForSale)

	rec = s.do(t, http.MethodPost, "/api/transactions/purchase", PurchaseRequest{AssetId: asset.Id, BuyerId: buyer.Id})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMarketRoutes(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/market/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalAssets":0,"totalVolume":"0.00","activeUsers":0,"avgPrice":"0.00"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/market/fees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.0035", decode[models.MintQuote](t, rec).Total)

	rec = s.do(t, http.MethodGet, "/api/market/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.MarketInsights](t, rec).PriceBuckets, 4)
}
