package domain

import "time"

// Spot is a bookable parking spot listing. The booking core reads spots
// but never mutates them; listing management lives with the owner flows.
type Spot struct {
	ID                int64     `json:"id"`
	OwnerID           int64     `json:"owner_id"`
	Title             string    `json:"title"`
	Address           string    `json:"address"`
	PriceCentsPerHour int64     `json:"price_cents_per_hour"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
