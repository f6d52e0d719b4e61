package store

type UpdateRequest struct {
	StoreName string   `json:"store_name" form:"store_name" validate:"required,max=250"`
	Latitude  *float64 `json:"latitude" form:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" form:"longitude" validate:"required,gte=-180,lte=180"`
	Radius    float64  `json:"radius" form:"radius" validate:"gte=0"`
}
