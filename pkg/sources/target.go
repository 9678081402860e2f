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

var targetTCINPattern = regexp.MustCompile(`(?:/p/[^/]+/-/A-|tcin=|A-)(\d+)`)

// TargetConfig holds Redsky API settings.
type TargetConfig struct {
	APIKey   string
	StoreID  string
	Endpoint string
	Timeout  time.Duration
}

// Target fetches quotes through the Target Redsky API.
type Target struct {
	cfg    TargetConfig
	client *resty.Client
}

func NewTarget(cfg TargetConfig) *Target {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://redsky.target.com/redsky_aggregations/v1/web"
	}
	if cfg.StoreID == "" {
		cfg.StoreID = "3991"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &Target{cfg: cfg, client: client}
}

func (t *Target) Platform() model.Platform { return model.PlatformTarget }

func (t *Target) Configured() bool { return t.cfg.APIKey != "" }

// ExtractID pulls the TCIN from a Target URL or accepts a bare TCIN.
// TCINs are all-digit and at least eight characters long.
func (t *Target) ExtractID(urlOrID string) (string, bool) {
	trimmed := strings.TrimSpace(urlOrID)
	if len(trimmed) >= 8 {
		if _, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
			return trimmed, true
		}
	}
	if m := targetTCINPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}

type targetPDPResponse struct {
	Data struct {
		Product struct {
			TCIN string `json:"tcin"`
			Item struct {
				ProductDescription struct {
					Title string `json:"title"`
				} `json:"product_description"`
				PrimaryBrand struct {
					Name string `json:"name"`
				} `json:"primary_brand"`
				ProductClassification struct {
					ProductTypeName string `json:"product_type_name"`
				} `json:"product_classification"`
				Enrichment struct {
					BuyURL string `json:"buy_url"`
					Images struct {
						PrimaryImageURL string `json:"primary_image_url"`
					} `json:"images"`
				} `json:"enrichment"`
			} `json:"item"`
			Price struct {
				CurrentRetail float64 `json:"current_retail"`
				RegularRetail float64 `json:"reg_retail"`
			} `json:"price"`
			Fulfillment struct {
				SoldOut            bool `json:"sold_out"`
				IsOutOfStockOnline bool `json:"is_out_of_stock_in_all_online_locations"`
				LimitedStockOnline bool `json:"limited_stock_online"`
			} `json:"fulfillment"`
		} `json:"product"`
	} `json:"data"`
}

func (t *Target) Fetch(ctx context.Context, productID string) (*Quote, error) {
	tcin, ok := t.ExtractID(productID)
	if !ok {
		return nil, NewError(model.PlatformTarget, KindNotFound, "invalid TCIN or URL", nil)
	}

	var parsed targetPDPResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      t.cfg.APIKey,
			"tcin":     tcin,
			"store_id": t.cfg.StoreID,
		}).
		SetResult(&parsed).
		Get(t.cfg.Endpoint + "/pdp_client_v1")
	if err != nil {
		return nil, NewError(model.PlatformTarget, KindUnavailable, "request failed", err)
	}
	if resp.StatusCode() == 404 {
		return nil, NewError(model.PlatformTarget, KindNotFound, "product not found", nil)
	}
	if resp.StatusCode() != 200 {
		return nil, NewError(model.PlatformTarget, KindUnavailable, "status "+resp.Status(), nil)
	}

	product := parsed.Data.Product
	if product.TCIN == "" {
		return nil, NewError(model.PlatformTarget, KindNotFound, "product not found", nil)
	}
	if product.Price.CurrentRetail <= 0 {
		return nil, NewError(model.PlatformTarget, KindParse, "missing price", nil)
	}

	availability := model.AvailabilityInStock
	switch {
	case product.Fulfillment.SoldOut || product.Fulfillment.IsOutOfStockOnline:
		availability = model.AvailabilityOutOfStock
	case product.Fulfillment.LimitedStockOnline:
		availability = model.AvailabilityLimited
	}

	return &Quote{
		Price:         product.Price.CurrentRetail,
		Currency:      "USD",
		Title:         product.Item.ProductDescription.Title,
		ImageURL:      product.Item.Enrichment.Images.PrimaryImageURL,
		ProductURL:    product.Item.Enrichment.BuyURL,
		Brand:         product.Item.PrimaryBrand.Name,
		Category:      product.Item.ProductClassification.ProductTypeName,
		OriginalPrice: product.Price.RegularRetail,
		Availability:  availability,
		Seller:        "Target",
		FetchedAt:     time.Now().UTC(),
	}, nil
}
