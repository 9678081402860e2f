package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	// KindUnavailable covers network failures, timeouts and upstream
	// non-2xx responses. Retried on the next scheduled sweep only.
	KindUnavailable ErrorKind = "source_unavailable"

	// KindParse covers responses that arrived but could not be decoded.
	// Treated identically to KindUnavailable for item state.
	KindParse ErrorKind = "parse_failure"

	// KindNotFound means the platform does not know the product.
	KindNotFound ErrorKind = "item_not_found"

	// KindNotConfigured means the platform has no credentials and
	// simulation mode is off.
	KindNotConfigured ErrorKind = "not_configured"
)

// Error is a typed fetch failure. None of these are fatal to the process.
type Error struct {
	Platform model.Platform
	Kind     ErrorKind
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Platform, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Platform, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a typed fetch failure.
func NewError(platform model.Platform, kind ErrorKind, msg string, err error) *Error {
	return &Error{Platform: platform, Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the error kind, defaulting to KindUnavailable for
// untyped errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnavailable
}

// Quote is a single price observation returned by a source at a point in
// time.
type Quote struct {
	Price         float64            `json:"price"`
	Currency      string             `json:"currency"`
	Title         string             `json:"title,omitempty"`
	ImageURL      string             `json:"image_url,omitempty"`
	ProductURL    string             `json:"product_url,omitempty"`
	Brand         string             `json:"brand,omitempty"`
	Category      string             `json:"category,omitempty"`
	OriginalPrice float64            `json:"original_price,omitempty"`
	Availability  model.Availability `json:"availability"`
	Seller        string             `json:"seller,omitempty"`

	// Simulated marks quotes fabricated by the deterministic simulation
	// source rather than fetched from a platform.
	Simulated bool `json:"simulated,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Source fetches quotes from one platform. Implementations must be safe
// for concurrent use.
type Source interface {
	// Platform returns the platform this source serves.
	Platform() model.Platform

	// Configured reports whether the source has usable credentials.
	Configured() bool

	// ExtractID resolves a product URL or raw identifier into the
	// platform's canonical product id.
	ExtractID(urlOrID string) (string, bool)

	// Fetch retrieves a fresh quote for the given product id.
	Fetch(ctx context.Context, productID string) (*Quote, error)
}
