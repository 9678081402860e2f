package sources

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pricewatch/pricewatch/pkg/model"
)

var walmartItemPattern = regexp.MustCompile(`/ip/(?:[^/]+/)?(\d+)`)

// WalmartConfig holds affiliate API settings.
type WalmartConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// Walmart fetches quotes through the Walmart affiliate API.
type Walmart struct {
	cfg    WalmartConfig
	client *resty.Client
}

func NewWalmart(cfg WalmartConfig) *Walmart {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://developer.api.walmart.com/api-proxy/service/affil/product/v2"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &Walmart{cfg: cfg, client: client}
}

func (w *Walmart) Platform() model.Platform { return model.PlatformWalmart }

func (w *Walmart) Configured() bool { return w.cfg.APIKey != "" }

// ExtractID pulls the numeric item ID from a Walmart URL or accepts a
// bare numeric ID.
func (w *Walmart) ExtractID(urlOrID string) (string, bool) {
	trimmed := strings.TrimSpace(urlOrID)
	if _, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return trimmed, true
	}
	if m := walmartItemPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}

type walmartItemResponse struct {
	Name            string  `json:"name"`
	SalePrice       float64 `json:"salePrice"`
	MSRP            float64 `json:"msrp"`
	BrandName       string  `json:"brandName"`
	CategoryPath    string  `json:"categoryPath"`
	LargeImage      string  `json:"largeImage"`
	ProductURL      string  `json:"productUrl"`
	Stock           string  `json:"stock"`
	SellerInfo      string  `json:"sellerInfo"`
	AvailableOnline bool    `json:"availableOnline"`
}

func (w *Walmart) Fetch(ctx context.Context, productID string) (*Quote, error) {
	id, ok := w.ExtractID(productID)
	if !ok {
		return nil, NewError(model.PlatformWalmart, KindNotFound, "invalid item ID or URL", nil)
	}

	var parsed walmartItemResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("WM_SEC.KEY_VERSION", "1").
		SetHeader("WM_CONSUMER.ID", w.cfg.APIKey).
		SetResult(&parsed).
		Get(w.cfg.Endpoint + "/items/" + id)
	if err != nil {
		return nil, NewError(model.PlatformWalmart, KindUnavailable, "request failed", err)
	}
	if resp.StatusCode() == 404 {
		return nil, NewError(model.PlatformWalmart, KindNotFound, "item not found", nil)
	}
	if resp.StatusCode() != 200 {
		return nil, NewError(model.PlatformWalmart, KindUnavailable, "status "+resp.Status(), nil)
	}
	if parsed.SalePrice <= 0 {
		return nil, NewError(model.PlatformWalmart, KindParse, "missing price", nil)
	}

	availability := model.AvailabilityUnknown
	switch strings.ToLower(parsed.Stock) {
	case "available":
		availability = model.AvailabilityInStock
		if !parsed.AvailableOnline {
			availability = model.AvailabilityLimited
		}
	case "not available":
		availability = model.AvailabilityOutOfStock
	case "limited supply":
		availability = model.AvailabilityLimited
	}

	return &Quote{
		Price:         parsed.SalePrice,
		Currency:      "USD",
		Title:         parsed.Name,
		ImageURL:      parsed.LargeImage,
		ProductURL:    parsed.ProductURL,
		Brand:         parsed.BrandName,
		Category:      lastCategory(parsed.CategoryPath),
		OriginalPrice: parsed.MSRP,
		Availability:  availability,
		Seller:        parsed.SellerInfo,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

func lastCategory(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return strings.TrimSpace(path[i+1:])
	}
	return strings.TrimSpace(path)
}
