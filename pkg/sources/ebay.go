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

var ebayItemPattern = regexp.MustCompile(`/itm/(?:[^/]+/)?(\d+)`)

// EbayConfig holds Browse API settings. Token is an OAuth application
// access token obtained via the client-credentials grant.
type EbayConfig struct {
	Token    string
	Endpoint string
	Timeout  time.Duration
}

// Ebay fetches quotes through the eBay Browse API.
type Ebay struct {
	cfg    EbayConfig
	client *resty.Client
}

func NewEbay(cfg EbayConfig) *Ebay {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.ebay.com/buy/browse/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &Ebay{cfg: cfg, client: client}
}

func (e *Ebay) Platform() model.Platform { return model.PlatformEBay }

func (e *Ebay) Configured() bool { return e.cfg.Token != "" }

// ExtractID pulls the numeric listing ID from an eBay URL or accepts a
// bare numeric ID.
func (e *Ebay) ExtractID(urlOrID string) (string, bool) {
	trimmed := strings.TrimSpace(urlOrID)
	if _, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return trimmed, true
	}
	if m := ebayItemPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}

type ebayItemResponse struct {
	Title string `json:"title"`
	Price struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	MarketingPrice struct {
		OriginalPrice struct {
			Value string `json:"value"`
		} `json:"originalPrice"`
	} `json:"marketingPrice"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	ItemWebURL   string `json:"itemWebUrl"`
	Brand        string `json:"brand"`
	CategoryPath string `json:"categoryPath"`
	Seller       struct {
		Username string `json:"username"`
	} `json:"seller"`
	EstimatedAvailabilities []struct {
		AvailabilityStatus string `json:"estimatedAvailabilityStatus"`
	} `json:"estimatedAvailabilities"`
}

func (e *Ebay) Fetch(ctx context.Context, productID string) (*Quote, error) {
	id, ok := e.ExtractID(productID)
	if !ok {
		return nil, NewError(model.PlatformEBay, KindNotFound, "invalid listing ID or URL", nil)
	}

	var parsed ebayItemResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+e.cfg.Token).
		SetHeader("X-EBAY-C-MARKETPLACE-ID", "EBAY_US").
		SetResult(&parsed).
		Get(e.cfg.Endpoint + "/item/v1|" + id + "|0")
	if err != nil {
		return nil, NewError(model.PlatformEBay, KindUnavailable, "request failed", err)
	}
	if resp.StatusCode() == 404 {
		return nil, NewError(model.PlatformEBay, KindNotFound, "listing not found", nil)
	}
	if resp.StatusCode() != 200 {
		return nil, NewError(model.PlatformEBay, KindUnavailable, "status "+resp.Status(), nil)
	}

	price, err := strconv.ParseFloat(parsed.Price.Value, 64)
	if err != nil || price <= 0 {
		return nil, NewError(model.PlatformEBay, KindParse, "missing or malformed price", err)
	}
	original := 0.0
	if v := parsed.MarketingPrice.OriginalPrice.Value; v != "" {
		original, _ = strconv.ParseFloat(v, 64)
	}

	availability := model.AvailabilityUnknown
	if len(parsed.EstimatedAvailabilities) > 0 {
		switch parsed.EstimatedAvailabilities[0].AvailabilityStatus {
		case "IN_STOCK":
			availability = model.AvailabilityInStock
		case "OUT_OF_STOCK":
			availability = model.AvailabilityOutOfStock
		case "LIMITED_STOCK":
			availability = model.AvailabilityLimited
		}
	}

	return &Quote{
		Price:         price,
		Currency:      orDefault(parsed.Price.Currency, "USD"),
		Title:         parsed.Title,
		ImageURL:      parsed.Image.ImageURL,
		ProductURL:    parsed.ItemWebURL,
		Brand:         parsed.Brand,
		Category:      lastPathSegment(parsed.CategoryPath),
		OriginalPrice: original,
		Availability:  availability,
		Seller:        parsed.Seller.Username,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

func lastPathSegment(path string) string {
	if i := strings.LastIndex(path, "|"); i >= 0 {
		return strings.TrimSpace(path[i+1:])
	}
	return strings.TrimSpace(path)
}
