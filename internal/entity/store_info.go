package entity

import (
	"github.com/uptrace/bun"
)

// StoreInfo is the geofence of the store.
type StoreInfo struct {
	bun.BaseModel `bun:"table:store_info"`

	BasicEntity
	StoreName string  `json:"store_name" bun:"store_name"`
	Latitude  float64 `json:"latitude" bun:"latitude"`
	Longitude float64 `json:"longitude" bun:"longitude"`
	Radius    float64 `json:"radius" bun:"radius"`
}
