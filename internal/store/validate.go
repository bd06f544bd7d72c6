package store

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxPriceScale is the number of fractional digits a price may carry.
const MaxPriceScale = 8

var priceRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,8})?$`)

// ValidPrice reports whether price is a plain non-negative decimal with at
// most MaxPriceScale fractional digits.
func ValidPrice(price string) bool {
	return priceRegex.MatchString(price)
}

// ValidateAssetParams checks the required listing fields.
func ValidateAssetParams(params CreateAssetParams) error {
	verr := NewValidationError()
	requireField(verr, "title", params.Title)
	requireField(verr, "description", params.Description)
	requireField(verr, "category", params.Category)
	requireField(verr, "previewUrl", params.PreviewUrl)
	requireField(verr, "ownerId", params.OwnerId)

	if strings.TrimSpace(params.Price) == "" {
		verr.Add("price", "is required")
	} else if !ValidPrice(params.Price) {
		verr.Add("price", "must be a non-negative decimal with at most 8 fractional digits")
	}
	return verr.OrNil()
}

// ValidateUserParams checks the user fields accepted by CreateUser.
func ValidateUserParams(params CreateUserParams) error {
	verr := NewValidationError()
	requireField(verr, "username", params.Username)
	if params.WalletAddress != nil && strings.TrimSpace(*params.WalletAddress) == "" {
		verr.Add("walletAddress", "cannot be blank")
	}
	if params.Balance != "" && !ValidPrice(params.Balance) {
		verr.Add("balance", "must be a non-negative decimal with at most 8 fractional digits")
	}
	return verr.OrNil()
}

func requireField(verr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.Add(field, "is required")
	}
}

// NewTransactionHash returns a fresh opaque reference standing in for an on-chain hash.
func NewTransactionHash() string {
	id := uuid.New()
	return "0x" + hex.EncodeToString(id[:])
}
