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

var bestbuySkuPattern = regexp.MustCompile(`(?:/site/[^/]+/|skuId=)(\d+)`)

// BestBuyConfig holds Products API settings.
type BestBuyConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// BestBuy fetches quotes through the Best Buy Products API.
type BestBuy struct {
	cfg    BestBuyConfig
	client *resty.Client
}

func NewBestBuy(cfg BestBuyConfig) *BestBuy {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.bestbuy.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &BestBuy{cfg: cfg, client: client}
}

func (b *BestBuy) Platform() model.Platform { return model.PlatformBestBuy }

func (b *BestBuy) Configured() bool { return b.cfg.APIKey != "" }

// ExtractID pulls the SKU from a Best Buy URL or accepts a bare SKU.
func (b *BestBuy) ExtractID(urlOrID string) (string, bool) {
	trimmed := strings.TrimSpace(urlOrID)
	if _, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return trimmed, true
	}
	if m := bestbuySkuPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}

type bestbuyProductResponse struct {
	Name           string  `json:"name"`
	SalePrice      float64 `json:"salePrice"`
	RegularPrice   float64 `json:"regularPrice"`
	Manufacturer   string  `json:"manufacturer"`
	ClassName      string  `json:"class"`
	Image          string  `json:"image"`
	URL            string  `json:"url"`
	OnlineAvail    bool    `json:"onlineAvailability"`
	InStoreAvail   bool    `json:"inStoreAvailability"`
	OrderableLabel string  `json:"orderable"`
}

func (b *BestBuy) Fetch(ctx context.Context, productID string) (*Quote, error) {
	sku, ok := b.ExtractID(productID)
	if !ok {
		return nil, NewError(model.PlatformBestBuy, KindNotFound, "invalid SKU or URL", nil)
	}

	var parsed bestbuyProductResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apiKey": b.cfg.APIKey,
			"format": "json",
		}).
		SetResult(&parsed).
		Get(b.cfg.Endpoint + "/products/" + sku + ".json")
	if err != nil {
		return nil, NewError(model.PlatformBestBuy, KindUnavailable, "request failed", err)
	}
	if resp.StatusCode() == 404 {
		return nil, NewError(model.PlatformBestBuy, KindNotFound, "SKU not found", nil)
	}
	if resp.StatusCode() != 200 {
		return nil, NewError(model.PlatformBestBuy, KindUnavailable, "status "+resp.Status(), nil)
	}
	if parsed.SalePrice <= 0 {
		return nil, NewError(model.PlatformBestBuy, KindParse, "missing price", nil)
	}

	availability := model.AvailabilityOutOfStock
	switch {
	case parsed.OnlineAvail:
		availability = model.AvailabilityInStock
	case parsed.InStoreAvail:
		availability = model.AvailabilityLimited
	}

	return &Quote{
		Price:         parsed.SalePrice,
		Currency:      "USD",
		Title:         parsed.Name,
		ImageURL:      parsed.Image,
		ProductURL:    parsed.URL,
		Brand:         parsed.Manufacturer,
		Category:      parsed.ClassName,
		OriginalPrice: parsed.RegularPrice,
		Availability:  availability,
		Seller:        "Best Buy",
		FetchedAt:     time.Now().UTC(),
	}, nil
}
