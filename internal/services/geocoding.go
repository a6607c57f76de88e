package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/safargo/safar-backend/pkg/utils"
)

// Geocoding result source tags. Fallback responses come from the static
// city list, so callers can tell degraded mode from a live answer.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// MaxPlaceResults caps autocomplete responses.
const MaxPlaceResults = 10

// Place is one geocoding candidate.
type Place struct {
	PlaceID     string   `json:"placeId,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

// PlacesResult is a tagged autocomplete response.
type PlacesResult struct {
	Source string  `json:"source"`
	Places []Place `json:"places"`
}

// AddressResult is a tagged details/reverse-geocode response.
type AddressResult struct {
	Source           string   `json:"source"`
	FormattedAddress string   `json:"formattedAddress"`
	Lat              *float64 `json:"lat,omitempty"`
	Lng              *float64 `json:"lng,omitempty"`
}

// knownCities is the static fallback gazetteer: the cities the service
// operates between, with coordinates. Used whenever the upstream
// provider fails, times out, or is not configured.
var knownCities = []Place{
	city("Ташкент", 41.2995, 69.2401),
	city("Самарканд", 39.6542, 66.9597),
	city("Бухара", 39.7747, 64.4286),
	city("Андижан", 40.7821, 72.3442),
	city("Наманган", 41.0011, 71.6673),
	city("Фергана", 40.3834, 71.7870),
	city("Коканд", 40.5286, 70.9425),
	city("Нукус", 42.4600, 59.6166),
	city("Ургенч", 41.5500, 60.6333),
	city("Хива", 41.3783, 60.3639),
	city("Карши", 38.8606, 65.7891),
	city("Термез", 37.2242, 67.2783),
	city("Джизак", 40.1158, 67.8422),
	city("Навои", 40.0844, 65.3792),
	city("Гулистан", 40.4897, 68.7842),
	city("Шахрисабз", 39.0578, 66.8340),
	city("Ангрен", 41.0167, 70.1436),
	city("Чирчик", 41.4689, 69.5822),
	city("Маргилан", 40.4711, 71.7246),
	city("Олмалык", 40.8441, 69.5983),
}

func city(name string, lat, lng float64) Place {
	return Place{Name: name, Description: name + ", Узбекистан", Lat: &lat, Lng: &lng}
}

// geocodeTimeout bounds every upstream call; on loss the static list wins.
const geocodeTimeout = 5 * time.Second

var geocodeHTTP = &http.Client{Timeout: geocodeTimeout}

const upstreamBase = "https://maps.googleapis.com/maps/api"

func geocodeAPIKey() string {
	return os.Getenv("GOOGLE_MAPS_API_KEY")
}

// FilterKnownCities returns the static cities matching the query by
// case-insensitive substring, capped at MaxPlaceResults.
func FilterKnownCities(query string) []Place {
	q := strings.ToLower(strings.TrimSpace(query))
	matches := make([]Place, 0, MaxPlaceResults)
	for _, c := range knownCities {
		if strings.Contains(strings.ToLower(c.Name), q) {
			matches = append(matches, c)
			if len(matches) == MaxPlaceResults {
				break
			}
		}
	}
	return matches
}

// AutocompletePlaces resolves a free-text query to place candidates.
// Never returns an error: any upstream failure degrades to the static
// city list with Source set to "fallback".
func AutocompletePlaces(ctx context.Context, query string) PlacesResult {
	query = strings.TrimSpace(query)
	fallback := PlacesResult{Source: SourceFallback, Places: FilterKnownCities(query)}

	key := geocodeAPIKey()
	if key == "" {
		return fallback
	}

	cacheKey := "autocomplete:" + strings.ToLower(query)
	if cached, err := GetCachedGeocode(ctx, cacheKey); err == nil {
		var result PlacesResult
		if json.Unmarshal(cached, &result) == nil {
			return result
		}
	}

	reqURL := fmt.Sprintf("%s/place/autocomplete/json?input=%s&components=country:uz&language=ru&key=%s",
		upstreamBase, url.QueryEscape(query), key)

	var out struct {
		Status      string `json:"status"`
		Predictions []struct {
			PlaceID     string `json:"place_id"`
			Description string `json:"description"`
			Terms       []struct {
				Value string `json:"value"`
			} `json:"terms"`
		} `json:"predictions"`
	}
	if err := geocodeGet(ctx, reqURL, &out); err != nil {
		log.Printf("Autocomplete upstream failed for %q: %v", query, err)
		return fallback
	}
	if out.Status != "OK" && out.Status != "ZERO_RESULTS" {
		log.Printf("Autocomplete upstream status %s for %q", out.Status, query)
		return fallback
	}

	result := PlacesResult{Source: SourceLive}
	for _, p := range out.Predictions {
		name := p.Description
		if len(p.Terms) > 0 {
			name = p.Terms[0].Value
		}
		result.Places = append(result.Places, Place{
			PlaceID:     p.PlaceID,
			Name:        name,
			Description: p.Description,
		})
		if len(result.Places) == MaxPlaceResults {
			break
		}
	}

	// Known cities the provider missed still belong in the list
	result.Places = mergeKnownCities(result.Places, query)

	if data, err := json.Marshal(result); err == nil {
		if err := SetCachedGeocode(ctx, cacheKey, data, GeocodeAutocompleteTTL); err != nil {
			log.Printf("Failed to cache autocomplete for %q: %v", query, err)
		}
	}

	return result
}

// mergeKnownCities appends static-list matches absent from the live
// results, keeping the cap. Matching is substring based, so this is
// approximate on purpose.
func mergeKnownCities(places []Place, query string) []Place {
	seen := make(map[string]bool, len(places))
	for _, p := range places {
		seen[strings.ToLower(p.Name)] = true
	}
	for _, c := range FilterKnownCities(query) {
		if len(places) >= MaxPlaceResults {
			break
		}
		if !seen[strings.ToLower(c.Name)] {
			places = append(places, c)
		}
	}
	return places
}

// PlaceDetails resolves a place id into coordinates and a formatted
// address. Falls back to an empty tagged result on upstream failure.
func PlaceDetails(ctx context.Context, placeID string) AddressResult {
	key := geocodeAPIKey()
	if key == "" {
		return AddressResult{Source: SourceFallback}
	}

	cacheKey := "details:" + placeID
	if cached, err := GetCachedGeocode(ctx, cacheKey); err == nil {
		var result AddressResult
		if json.Unmarshal(cached, &result) == nil {
			return result
		}
	}

	reqURL := fmt.Sprintf("%s/place/details/json?place_id=%s&fields=geometry,formatted_address&language=ru&key=%s",
		upstreamBase, url.QueryEscape(placeID), key)

	var out struct {
		Status string `json:"status"`
		Result struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"result"`
	}
	if err := geocodeGet(ctx, reqURL, &out); err != nil {
		log.Printf("Place details upstream failed for %q: %v", placeID, err)
		return AddressResult{Source: SourceFallback}
	}
	if out.Status != "OK" {
		log.Printf("Place details upstream status %s for %q", out.Status, placeID)
		return AddressResult{Source: SourceFallback}
	}

	lat := out.Result.Geometry.Location.Lat
	lng := out.Result.Geometry.Location.Lng
	result := AddressResult{
		Source:           SourceLive,
		FormattedAddress: out.Result.FormattedAddress,
		Lat:              &lat,
		Lng:              &lng,
	}

	if data, err := json.Marshal(result); err == nil {
		if err := SetCachedGeocode(ctx, cacheKey, data, GeocodeDetailsTTL); err != nil {
			log.Printf("Failed to cache details for %q: %v", placeID, err)
		}
	}

	return result
}

// ReverseGeocode resolves coordinates into a formatted address. Out-of-
// region coordinates and upstream failures fall back to the nearest
// known city.
func ReverseGeocode(ctx context.Context, lat, lng float64) AddressResult {
	if !utils.IsInServiceRegion(lat, lng) {
		return AddressResult{Source: SourceFallback}
	}

	fallback := nearestCityFallback(lat, lng)

	key := geocodeAPIKey()
	if key == "" {
		return fallback
	}

	cacheKey := fmt.Sprintf("reverse:%.4f:%.4f", lat, lng)
	if cached, err := GetCachedGeocode(ctx, cacheKey); err == nil {
		var result AddressResult
		if json.Unmarshal(cached, &result) == nil {
			return result
		}
	}

	reqURL := fmt.Sprintf("%s/geocode/json?latlng=%.6f,%.6f&language=ru&key=%s",
		upstreamBase, lat, lng, key)

	var out struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
	}
	if err := geocodeGet(ctx, reqURL, &out); err != nil {
		log.Printf("Reverse geocode upstream failed for (%.4f, %.4f): %v", lat, lng, err)
		return fallback
	}
	if out.Status != "OK" || len(out.Results) == 0 {
		return fallback
	}

	result := AddressResult{
		Source:           SourceLive,
		FormattedAddress: out.Results[0].FormattedAddress,
		Lat:              &lat,
		Lng:              &lng,
	}

	if data, err := json.Marshal(result); err == nil {
		if err := SetCachedGeocode(ctx, cacheKey, data, GeocodeDetailsTTL); err != nil {
			log.Printf("Failed to cache reverse geocode: %v", err)
		}
	}

	return result
}

// nearestCityFallback picks the closest static city to the coordinate.
func nearestCityFallback(lat, lng float64) AddressResult {
	best := knownCities[0]
	bestDist := utils.HaversineDistance(lat, lng, *best.Lat, *best.Lng)
	for _, c := range knownCities[1:] {
		d := utils.HaversineDistance(lat, lng, *c.Lat, *c.Lng)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return AddressResult{
		Source:           SourceFallback,
		FormattedAddress: best.Description,
		Lat:              best.Lat,
		Lng:              best.Lng,
	}
}

// geocodeGet issues a GET against the upstream provider and decodes
// the JSON body into out.
func geocodeGet(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := geocodeHTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream status code %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
