package model

// CartItem is a product line saved in the app-side cart.
type CartItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// Cart is the saved cart for a phone number.
type Cart struct {
	ID    uint       `gorm:"primaryKey" json:"_id"`
	Phone string     `gorm:"uniqueIndex;not null" json:"phone"`
	Items []CartItem `gorm:"serializer:json" json:"items"`
}
