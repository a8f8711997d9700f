package models

// Organization is a nearby rescue or veterinary place returned by the places provider.
type Organization struct {
	PlaceID          string      `json:"place_id"`
	Name             string      `json:"name"`
	Address          string      `json:"address"`
	Coordinates      Coordinates `json:"coordinates"`
	DistanceKm       float64     `json:"distance_km"`
	Rating           float32     `json:"rating,omitempty"`
	UserRatingsTotal int         `json:"user_ratings_total,omitempty"`
	OpenNow          *bool       `json:"open_now,omitempty"`
	Types            []string    `json:"types,omitempty"`

	// Filled by detail lookups
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	OpeningHours []string `json:"opening_hours,omitempty"`
}

type NearbyOrganizationsRequest struct {
	Lat     *float64 `form:"lat" validate:"required,gte=-90,lte=90"`
	Lng     *float64 `form:"lng" validate:"required,gte=-180,lte=180"`
	Keyword string   `form:"keyword" validate:"max=200"`
}

type NearbyOrganizationsResponse struct {
	Success       bool           `json:"success"`
	Organizations []Organization `json:"organizations"`
	Total         int            `json:"total"`
	RadiusKm      float64        `json:"radius_km"`
}
