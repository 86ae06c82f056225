package models

import "time"

// Category groups transactions for analytics. Name is unique.
type Category struct {
	ID        int64
	Name      string
	Color     string
	Icon      string
	CreatedAt time.Time
}

// DefaultCategories is inserted once when the store is initialized. Existing
// rows with the same name are never overwritten.
var DefaultCategories = []Category{
	{Name: "Groceries", Color: "#4CAF50", Icon: "cart"},
	{Name: "Dining", Color: "#FF9800", Icon: "utensils"},
	{Name: "Transport", Color: "#2196F3", Icon: "car"},
	{Name: "Shopping", Color: "#E91E63", Icon: "bag"},
	{Name: "Bills & Utilities", Color: "#9C27B0", Icon: "bolt"},
	{Name: "Entertainment", Color: "#FFC107", Icon: "film"},
	{Name: "Health", Color: "#F44336", Icon: "heart"},
	{Name: "Income", Color: "#009688", Icon: "wallet"},
	{Name: "Other", Color: "#607D8B", Icon: "dots"},
}
