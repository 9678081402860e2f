package sources

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pricewatch/pricewatch/pkg/model"
)

var asinPattern = regexp.MustCompile(`(?i)(?:/dp/|/gp/product/|/product/|asin=)([A-Z0-9]{10})`)
var bareASIN = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// AmazonConfig holds Product Advertising API credentials.
type AmazonConfig struct {
	AccessKey  string
	SecretKey  string
	PartnerTag string
	// Endpoint overrides the PA-API host. Requests are not SigV4-signed
	// here; point this at a signing proxy that adds the signature.
	Endpoint string
	Timeout  time.Duration
}

// Amazon fetches quotes through the Product Advertising API.
type Amazon struct {
	cfg    AmazonConfig
	client *resty.Client
}

// NewAmazon creates an Amazon source.
func NewAmazon(cfg AmazonConfig) *Amazon {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://webservices.amazon.com/paapi5/getitems"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &Amazon{cfg: cfg, client: client}
}

func (a *Amazon) Platform() model.Platform { return model.PlatformAmazon }

func (a *Amazon) Configured() bool {
	return a.cfg.AccessKey != "" && a.cfg.SecretKey != "" && a.cfg.PartnerTag != ""
}

// ExtractID pulls the ASIN out of an Amazon URL or accepts a bare ASIN.
func (a *Amazon) ExtractID(urlOrID string) (string, bool) {
	trimmed := strings.TrimSpace(urlOrID)
	if bareASIN.MatchString(strings.ToUpper(trimmed)) && !strings.Contains(trimmed, "/") {
		return strings.ToUpper(trimmed), true
	}
	if m := asinPattern.FindStringSubmatch(trimmed); m != nil {
		return strings.ToUpper(m[1]), true
	}
	return "", false
}

type amazonItemsResponse struct {
	ItemsResult struct {
		Items []struct {
			ASIN      string `json:"ASIN"`
			DetailURL string `json:"DetailPageURL"`
			Images    struct {
				Primary struct {
					Large struct {
						URL string `json:"URL"`
					} `json:"Large"`
				} `json:"Primary"`
			} `json:"Images"`
			ItemInfo struct {
				Title struct {
					DisplayValue string `json:"DisplayValue"`
				} `json:"Title"`
				ByLineInfo struct {
					Brand struct {
						DisplayValue string `json:"DisplayValue"`
					} `json:"Brand"`
				} `json:"ByLineInfo"`
				Classifications struct {
					ProductGroup struct {
						DisplayValue string `json:"DisplayValue"`
					} `json:"ProductGroup"`
				} `json:"Classifications"`
			} `json:"ItemInfo"`
			Offers struct {
				Listings []struct {
					Price struct {
						Amount   float64 `json:"Amount"`
						Currency string  `json:"Currency"`
					} `json:"Price"`
					SavingBasis struct {
						Amount float64 `json:"Amount"`
					} `json:"SavingBasis"`
					Availability struct {
						Type string `json:"Type"`
					} `json:"Availability"`
					MerchantInfo struct {
						Name string `json:"Name"`
					} `json:"MerchantInfo"`
				} `json:"Listings"`
			} `json:"Offers"`
		} `json:"Items"`
	} `json:"ItemsResult"`
}

func (a *Amazon) Fetch(ctx context.Context, productID string) (*Quote, error) {
	asin, ok := a.ExtractID(productID)
	if !ok {
		return nil, NewError(model.PlatformAmazon, KindNotFound, "invalid ASIN or URL", nil)
	}

	var parsed amazonItemsResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetBody(map[string]any{
			"ItemIds":     []string{asin},
			"PartnerTag":  a.cfg.PartnerTag,
			"PartnerType": "Associates",
			"Resources": []string{
				"ItemInfo.Title", "ItemInfo.ByLineInfo", "ItemInfo.Classifications",
				"Images.Primary.Large",
				"Offers.Listings.Price", "Offers.Listings.SavingBasis",
				"Offers.Listings.Availability.Type", "Offers.Listings.MerchantInfo",
			},
		}).
		SetResult(&parsed).
		Post(a.cfg.Endpoint)
	if err != nil {
		return nil, NewError(model.PlatformAmazon, KindUnavailable, "request failed", err)
	}
	if resp.StatusCode() == 404 {
		return nil, NewError(model.PlatformAmazon, KindNotFound, "item not found", nil)
	}
	if resp.StatusCode() != 200 {
		return nil, NewError(model.PlatformAmazon, KindUnavailable, "status "+resp.Status(), nil)
	}

	items := parsed.ItemsResult.Items
	if len(items) == 0 {
		return nil, NewError(model.PlatformAmazon, KindNotFound, "no items in response", nil)
	}
	item := items[0]
	if len(item.Offers.Listings) == 0 {
		return nil, NewError(model.PlatformAmazon, KindParse, "no offer listings", nil)
	}
	listing := item.Offers.Listings[0]
	if listing.Price.Amount <= 0 {
		return nil, NewError(model.PlatformAmazon, KindParse, "missing price", nil)
	}

	availability := model.AvailabilityUnknown
	switch listing.Availability.Type {
	case "Now":
		availability = model.AvailabilityInStock
	case "OutOfStock":
		availability = model.AvailabilityOutOfStock
	case "Backordered", "Preorderable":
		availability = model.AvailabilityLimited
	}

	return &Quote{
		Price:         listing.Price.Amount,
		Currency:      orDefault(listing.Price.Currency, "USD"),
		Title:         item.ItemInfo.Title.DisplayValue,
		ImageURL:      item.Images.Primary.Large.URL,
		ProductURL:    item.DetailURL,
		Brand:         item.ItemInfo.ByLineInfo.Brand.DisplayValue,
		Category:      item.ItemInfo.Classifications.ProductGroup.DisplayValue,
		OriginalPrice: listing.SavingBasis.Amount,
		Availability:  availability,
		Seller:        listing.MerchantInfo.Name,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
