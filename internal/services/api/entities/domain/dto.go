// Package domain holds DTOs for the entities read model
package domain

import "time"

// Paging bounds for GET /entities
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ListInput selects a page of entities
type ListInput struct {
	Page int
	Size int
	// Active filters on the active flag when set
	Active *bool
}

// Entity is the indexed registration record of one agent
type Entity struct {
	ID            int64     `json:"id" example:"7"`
	Address       string    `json:"address" example:"9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"`
	Owner         string    `json:"owner"`
	PayoutAddress string    `json:"payoutAddress"`
	Name          string    `json:"name" example:"research-agent"`
	Description   string    `json:"description"`
	URI           string    `json:"uri"`
	Active        bool      `json:"active"`
	CreatedAt     int64     `json:"createdAt" example:"1700000000"`
	UpdatedAt     int64     `json:"updatedAt" example:"1700000100"`
	IndexedAt     time.Time `json:"indexedAt"`
}

// Reputation is the paid view of an entity's ratings and volume
type Reputation struct {
	EntityID     int64     `json:"entityId" example:"7"`
	Address      string    `json:"address"`
	TotalRatings int64     `json:"totalRatings" example:"4"`
	RatingSum    int64     `json:"ratingSum" example:"17"`
	Average      float64   `json:"average" example:"4.25"`
	TotalVolume  int64     `json:"totalVolume" example:"900000"`
	UniqueRaters int64     `json:"uniqueRaters" example:"3"`
	Distribution [5]int64  `json:"ratingDistribution"`
	IndexedAt    time.Time `json:"indexedAt"`
}

// Page is a slice of entities plus the filtered total
type Page struct {
	Items []Entity
	Total int
	Page  int
	Size  int
}
