package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCart is returned when a checkout has no lines.
var ErrEmptyCart = errors.New("shopify: cart has no lines")

// UserError is a validation problem reported by the Storefront API.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrors is returned when Shopify rejects a cart.
type UserErrors []UserError

func (e UserErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ue := range e {
		msgs = append(msgs, ue.Message)
	}
	return "shopify: " + strings.Join(msgs, "; ")
}

// CartLine is one variant and quantity to buy.
type CartLine struct {
	VariantID int64 `json:"variantId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CheckoutCart is a Storefront cart ready for the hosted checkout.
type CheckoutCart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
}

const cartCreateMutation = `mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { id checkoutUrl }
    userErrors { field message }
  }
}`

// CreateCart creates a Storefront cart holding lines and returns its checkout URL.
func (c *Client) CreateCart(ctx context.Context, lines []CartLine) (*CheckoutCart, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	input := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		input = append(input, map[string]any{
			"merchandiseId": fmt.Sprintf("gid://shopify/ProductVariant/%d", l.VariantID),
			"quantity":      l.Quantity,
		})
	}

	var resp struct {
		Data struct {
			CartCreate struct {
				Cart       *CheckoutCart `json:"cart"`
				UserErrors UserErrors    `json:"userErrors"`
			} `json:"cartCreate"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	vars := map[string]any{"input": map[string]any{"lines": input}}
	if err := c.storefrontQuery(ctx, cartCreateMutation, vars, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("shopify: graphql: %s", resp.Errors[0].Message)
	}
	if ue := resp.Data.CartCreate.UserErrors; len(ue) > 0 {
		return nil, ue
	}
	if resp.Data.CartCreate.Cart == nil {
		return nil, errors.New("shopify: cartCreate returned no cart")
	}
	return resp.Data.CartCreate.Cart, nil
}
