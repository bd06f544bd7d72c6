package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/AnshumPal/icp-vr-marketplace/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidState           = errors.New("invalid state")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// ValidationError reports malformed or missing input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e when it holds errors and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e.Fields[field]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CreateUserParams contains the parameters for creating a user.
type CreateUserParams struct {
	Username      string
	WalletAddress *string
	Balance       string // defaults to "0"
}

// CreateAssetParams contains the parameters for inserting an asset listing.
type CreateAssetParams struct {
	Title       string
	Description string
	Category    string
	Price       string
	PreviewUrl  string
	ModelUrl    *string
	FileSize    *string
	OwnerId     string
}

// CreateTransactionParams contains the snapshot fields of a purchase.
type CreateTransactionParams struct {
	AssetId         string
	BuyerId         string
	SellerId        string
	Price           string
	TransactionHash string
}

// AssetSort selects the ordering of a listing query.
type AssetSort string

const (
	SortRecent    AssetSort = "recent"
	SortPriceLow  AssetSort = "price-low"
	SortPriceHigh AssetSort = "price-high"
)

// AssetFilter narrows a listing query. Zero values mean "no constraint".
type AssetFilter struct {
	Category string
	MinPrice string
	MaxPrice string
	Sort     AssetSort
}

// MarketStore defines the contract that every backend must satisfy.
type MarketStore interface {
	// --- Users ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)

	// --- Assets ---
	CreateAsset(ctx context.Context, params CreateAssetParams) (*models.Asset, error)
	GetAssetById(ctx context.Context, assetId string) (*models.Asset, error)
	ListAssets(ctx context.Context, filter AssetFilter) ([]models.Asset, error)
	ListAssetsByOwner(ctx context.Context, ownerId string) ([]models.Asset, error)
	SetAssetOwner(ctx context.Context, assetId, newOwnerId string) (*models.Asset, error)
	SetAssetForSale(ctx context.Context, assetId string, forSale bool) (*models.Asset, error)

	// --- Transactions ---
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (*models.Transaction, error)
	GetTransactionById(ctx context.Context, transactionId string) (*models.Transaction, error)
	SetTransactionStatus(ctx context.Context, transactionId string, status models.TransactionStatus) (*models.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userId string) ([]models.Transaction, error)
	ListTransactionsByStatus(ctx context.Context, status models.TransactionStatus) ([]models.Transaction, error)
	// CompleteTransfer marks a pending transaction completed and moves the asset
	// from the snapshot seller to the buyer as one atomic step.
	CompleteTransfer(ctx context.Context, transactionId string) (*models.Transaction, error)

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
