package shopify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const productListCacheKey = "products:tagged"

// ErrInvalidProductID is returned for product ids that are not numeric.
var ErrInvalidProductID = errors.New("shopify: invalid product id")

// variantFetchLimit caps concurrent metafield requests for one product.
const variantFetchLimit = 4

type image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type variant struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Price          string  `json:"price"`
	CompareAtPrice *string `json:"compare_at_price"`
	ImageID        *int64  `json:"image_id"`
}

type product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Status   string    `json:"status"`
	Tags     string    `json:"tags"`
	Image    *image    `json:"image"`
	Images   []image   `json:"images"`
	Variants []variant `json:"variants"`
}

type metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     any    `json:"value"`
}

// ProductSummary is a catalog entry as shown in the app's shop tab.
type ProductSummary struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Image          string   `json:"image,omitempty"`
	Price          string   `json:"price"`
	CompareAtPrice *string  `json:"compare_at_price"`
	FirstVariantID int64    `json:"first_variant_id"`
	Images         []string `json:"images"`
}

// VariantDetail is one purchasable option of a product.
type VariantDetail struct {
	ID             int64                     `json:"id"`
	Title          string                    `json:"title"`
	Price          *int                      `json:"price"`
	CompareAtPrice *string                   `json:"compare_at_price"`
	Image          *string                   `json:"image"`
	Metafields     map[string]map[string]any `json:"metafields"`
}

// ProductDetail is a product page with per-variant custom metafields.
type ProductDetail struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Variants    []VariantDetail `json:"variants"`
}

// sellable reports whether p belongs in the app catalog: published, tagged
// "product" and buyable.
func sellable(p product) bool {
	return p.Status != "draft" &&
		strings.Contains(strings.ToLower(p.Tags), "product") &&
		len(p.Variants) > 0
}

func imageSources(images []image) []string {
	srcs := make([]string, 0, len(images))
	for _, img := range images {
		srcs = append(srcs, img.Src)
	}
	return srcs
}

func summarize(p product) ProductSummary {
	first := p.Variants[0]
	s := ProductSummary{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.BodyHTML,
		Price:          first.Price,
		CompareAtPrice: first.CompareAtPrice,
		FirstVariantID: first.ID,
		Images:         imageSources(p.Images),
	}
	if p.Image != nil {
		s.Image = p.Image.Src
	}
	return s
}

// ListProducts returns the sellable catalog, served from the cache when fresh.
func (c *Client) ListProducts(ctx context.Context) ([]ProductSummary, error) {
	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, productListCacheKey)
		if err != nil {
			c.logger.Warnw("catalog cache read failed", "error", err)
		}
		var cached []ProductSummary
		if ok && json.Unmarshal(data, &cached) == nil {
			return cached, nil
		}
	}

	var resp struct {
		Products []product `json:"products"`
	}
	if err := c.adminGet(ctx, "/products.json?limit=250", &resp); err != nil {
		return nil, err
	}

	summaries := make([]ProductSummary, 0, len(resp.Products))
	for _, p := range resp.Products {
		if sellable(p) {
			summaries = append(summaries, summarize(p))
		}
	}

	if c.cache != nil {
		if data, err := json.Marshal(summaries); err == nil {
			if err := c.cache.Set(ctx, productListCacheKey, data); err != nil {
				c.logger.Warnw("catalog cache write failed", "error", err)
			}
		}
	}
	return summaries, nil
}

// GetProduct loads product id with the "custom" metafields of every variant.
func (c *Client) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, fmt.Errorf("%w %q", ErrInvalidProductID, id)
	}

	var resp struct {
		Product product `json:"product"`
	}
	if err := c.adminGet(ctx, "/products/"+id+".json", &resp); err != nil {
		return nil, err
	}
	p := resp.Product

	srcByID := make(map[int64]string, len(p.Images))
	for _, img := range p.Images {
		srcByID[img.ID] = img.Src
	}

	variants := make([]VariantDetail, len(p.Variants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(variantFetchLimit)
	for i, v := range p.Variants {
		g.Go(func() error {
			custom, err := c.customMetafields(gctx, v.ID)
			if err != nil {
				return err
			}
			detail := VariantDetail{
				ID:             v.ID,
				Title:          v.Title,
				Price:          parsePrice(v.Price),
				CompareAtPrice: v.CompareAtPrice,
				Metafields:     map[string]map[string]any{"custom": custom},
			}
			if v.ImageID != nil {
				if src, ok := srcByID[*v.ImageID]; ok {
					detail.Image = &src
				}
			}
			variants[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ProductDetail{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.BodyHTML,
		Images:      imageSources(p.Images),
		Variants:    variants,
	}, nil
}

func (c *Client) customMetafields(ctx context.Context, variantID int64) (map[string]any, error) {
	var resp struct {
		Metafields []metafield `json:"metafields"`
	}
	if err := c.adminGet(ctx, fmt.Sprintf("/variants/%d/metafields.json", variantID), &resp); err != nil {
		return nil, err
	}
	custom := make(map[string]any)
	for _, m := range resp.Metafields {
		if m.Namespace == "custom" {
			custom[m.Key] = m.Value
		}
	}
	return custom, nil
}

// parsePrice keeps the integer part of a decimal price string; nil when unparseable.
func parsePrice(price string) *int {
	f, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}
