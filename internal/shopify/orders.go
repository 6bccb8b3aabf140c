package shopify

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// LineItem is a purchased product line.
type LineItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	VariantID int64  `json:"variantId"`
	ProductID int64  `json:"productId"`
}

// Order is a past order as shown in the app's order history.
type Order struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	CreatedAt       time.Time  `json:"createdAt"`
	TotalPrice      string     `json:"totalPrice"`
	FinancialStatus string     `json:"financialStatus"`
	LineItems       []LineItem `json:"lineItems"`
}

type adminLineItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	VariantID int64  `json:"variant_id"`
	ProductID int64  `json:"product_id"`
}

type adminOrder struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	CreatedAt       time.Time       `json:"created_at"`
	TotalPrice      string          `json:"total_price"`
	FinancialStatus string          `json:"financial_status"`
	LineItems       []adminLineItem `json:"line_items"`
}

func (o adminOrder) toOrder() Order {
	items := make([]LineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, LineItem(li))
	}
	return Order{
		ID:              o.ID,
		Name:            o.Name,
		CreatedAt:       o.CreatedAt,
		TotalPrice:      o.TotalPrice,
		FinancialStatus: o.FinancialStatus,
		LineItems:       items,
	}
}

// OrdersByPhone returns the orders of the customer registered with phone.
// An unknown customer has no orders.
func (c *Client) OrdersByPhone(ctx context.Context, phone string) ([]Order, error) {
	var customers struct {
		Customers []struct {
			ID int64 `json:"id"`
		} `json:"customers"`
	}
	q := url.Values{}
	q.Set("query", "phone:"+phone)
	q.Set("fields", "id")
	if err := c.adminGet(ctx, "/customers/search.json?"+q.Encode(), &customers); err != nil {
		return nil, err
	}
	if len(customers.Customers) == 0 {
		return []Order{}, nil
	}

	var resp struct {
		Orders []adminOrder `json:"orders"`
	}
	path := fmt.Sprintf("/customers/%d/orders.json?status=any", customers.Customers[0].ID)
	if err := c.adminGet(ctx, path, &resp); err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		orders = append(orders, o.toOrder())
	}
	return orders, nil
}
