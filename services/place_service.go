package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"

	"rescueradar/models"
	"rescueradar/utils"
)

const (
	OrganizationSearchRadiusMeters = 10000
	OrganizationSearchKeyword      = "animal welfare veterinary shelter rescue"
	MaxOrganizations               = 10
)

// PlacesClient is the part of the Google Maps client used for organization lookups.
type PlacesClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

type PlaceService struct {
	client PlacesClient
	cache  *Cache
}

// NewPlaceService returns a service without a client when the key is unset or a placeholder.
func NewPlaceService(apiKey string, cache *Cache) (*PlaceService, error) {
	if utils.IsPlaceholder(apiKey) {
		return &PlaceService{cache: cache}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &PlaceService{client: client, cache: cache}, nil
}

func NewPlaceServiceWithClient(client PlacesClient, cache *Cache) *PlaceService {
	return &PlaceService{client: client, cache: cache}
}

func (s *PlaceService) Enabled() bool {
	return s.client != nil
}

// Nearby returns up to ten rescue organizations within 10 km, nearest first.
func (s *PlaceService) Nearby(ctx context.Context, lat, lng float64, keyword string) ([]models.Organization, error) {
	if !s.Enabled() {
		return nil, utils.NewNotConfiguredError("google_maps")
	}
	if !utils.IsValidCoordinate(lat, lng) {
		return nil, utils.NewBadRequestError("Invalid coordinates")
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		keyword = OrganizationSearchKeyword
	}

	cacheKey := organizationsCacheKey(lat, lng, keyword)
	var cached []models.Organization
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	resp, err := s.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: lat, Lng: lng},
		Radius:   OrganizationSearchRadiusMeters,
		Keyword:  keyword,
		Type:     maps.PlaceTypeVeterinaryCare,
	})
	if err != nil {
		return nil, utils.NewExternalServiceError("google_maps", "Failed to search nearby organizations", err)
	}

	results := resp.Results
	if len(results) > MaxOrganizations {
		results = results[:MaxOrganizations]
	}

	orgs := make([]models.Organization, 0, len(results))
	for _, r := range results {
		orgs = append(orgs, organizationFromResult(r, lat, lng))
	}
	s.enrich(ctx, orgs)

	orgs = withinRadius(orgs, OrganizationSearchRadiusMeters/1000.0)
	s.cache.SetJSON(ctx, cacheKey, orgs, OrganizationsCacheTTL)
	return orgs, nil
}

// enrich fetches details for every organization concurrently and merges them by place id.
func (s *PlaceService) enrich(ctx context.Context, orgs []models.Organization) {
	index := make(map[string]int, len(orgs))
	for i, org := range orgs {
		index[org.PlaceID] = i
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, org := range orgs {
		if org.PlaceID == "" {
			continue
		}
		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			details, err := s.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
				PlaceID: placeID,
				Fields: []maps.PlaceDetailsFieldMask{
					maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
					maps.PlaceDetailsFieldMaskWebsite,
					maps.PlaceDetailsFieldMaskOpeningHours,
				},
			})
			if err != nil {
				logrus.WithError(err).WithField("place_id", placeID).Debug("Place details lookup failed")
				return
			}

			mu.Lock()
			defer mu.Unlock()
			target := &orgs[index[placeID]]
			target.Phone = details.FormattedPhoneNumber
			target.Website = details.Website
			if details.OpeningHours != nil {
				target.OpeningHours = details.OpeningHours.WeekdayText
				if target.OpenNow == nil {
					target.OpenNow = details.OpeningHours.OpenNow
				}
			}
		}(org.PlaceID)
	}
	wg.Wait()
}

func organizationFromResult(r maps.PlacesSearchResult, lat, lng float64) models.Organization {
	address := r.Vicinity
	if address == "" {
		address = r.FormattedAddress
	}
	loc := r.Geometry.Location
	org := models.Organization{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Address:          address,
		Coordinates:      models.Coordinates{Lat: loc.Lat, Lng: loc.Lng},
		DistanceKm:       utils.DistanceKm(lat, lng, loc.Lat, loc.Lng),
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		Types:            r.Types,
	}
	if r.OpeningHours != nil {
		org.OpenNow = r.OpeningHours.OpenNow
	}
	return org
}

func withinRadius(orgs []models.Organization, radiusKm float64) []models.Organization {
	kept := orgs[:0]
	for _, org := range orgs {
		if org.DistanceKm <= radiusKm {
			kept = append(kept, org)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].DistanceKm < kept[j].DistanceKm
	})
	return kept
}

func organizationsCacheKey(lat, lng float64, keyword string) string {
	return fmt.Sprintf("rescueradar:orgs:%.3f:%.3f:%s", lat, lng, strings.ToLower(keyword))
}
