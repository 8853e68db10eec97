package models

// Admin-managed reference lists used by the frontend selectors.

type Currency struct {
	ID    string `json:"id"`
	Value string `json:"value"` // ISO code, e.g. "USD"
	Label string `json:"label"` // display name, e.g. "US Dollar"
}

type CurrencyRequest struct {
	Value string `json:"value" binding:"required"`
	Label string `json:"label" binding:"required"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}
