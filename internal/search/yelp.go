package search

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wander/internal/model"
)

const (
	yelpAPIBase = "https://api.yelp.com/v3"

	yelpPageSize  = 20
	yelpMaxRadius = 40000 // meters
	yelpMaxOffset = 240   // limit+offset may not exceed this
)

// yelpCategories maps search types onto Yelp category aliases.
var yelpCategories = map[model.SearchType]string{
	model.TypeTouristAttraction: "landmarks,tours",
	model.TypeRestaurant:        "restaurants",
	model.TypeCafe:              "cafes,coffee",
	model.TypeBar:               "bars",
	model.TypeMuseum:            "museums",
	model.TypePark:              "parks",
	model.TypeLodging:           "hotels",
}

// YelpClient wraps the Yelp Fusion business search. Pages are addressed by
// offset, carried as a decimal cursor.
type YelpClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYelpClient creates a new Yelp Fusion API client.
func NewYelpClient(apiKey string) *YelpClient {
	return &YelpClient{
		apiKey:     apiKey,
		baseURL:    yelpAPIBase,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *YelpClient) Nearby(ctx context.Context, pr model.PageRequest) (model.ResultPage, error) {
	offset := 0
	if pr.Cursor != "" {
		n, err := strconv.Atoi(pr.Cursor)
		if err != nil || n < 0 {
			return model.ResultPage{}, fmt.Errorf("invalid yelp cursor %q", pr.Cursor)
		}
		offset = n
	}

	q := pr.Query
	radius := q.Radius
	if radius > yelpMaxRadius {
		radius = yelpMaxRadius
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(q.Center.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(q.Center.Lng, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("limit", strconv.Itoa(yelpPageSize))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("sort_by", "best_match")
	if q.Keyword != "" {
		params.Set("term", q.Keyword)
	}
	if cats, ok := yelpCategories[q.Type]; ok {
		params.Set("categories", cats)
	}

	reqURL := fmt.Sprintf("%s/businesses/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return model.ResultPage{}, fmt.Errorf("request creation failed: %w", err)
	}

	// Yelp Fusion API authentication
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ResultPage{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.ResultPage{}, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var result businessSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.ResultPage{}, fmt.Errorf("JSON decode error: %w", err)
	}

	places := make([]model.Place, 0, len(result.Businesses))
	for _, business := range result.Businesses {
		place := model.Place{
			ID:   business.ID,
			Name: business.Name,
			Location: model.GeoPoint{
				Lat: business.Coordinates.Latitude,
				Lng: business.Coordinates.Longitude,
			},
			Rating:      business.Rating,
			RatingCount: business.ReviewCount,
			PhotoRef:    business.ImageURL,
		}
		if business.Location != nil {
			place.Vicinity = business.Location.Address1
			if business.Location.City != "" {
				if place.Vicinity != "" {
					place.Vicinity += ", "
				}
				place.Vicinity += business.Location.City
			}
		}
		places = append(places, place)
	}

	page := model.ResultPage{Items: places}
	next := offset + len(result.Businesses)
	if len(result.Businesses) > 0 && next < result.Total && next+yelpPageSize <= yelpMaxOffset {
		page.NextCursor = strconv.Itoa(next)
	}
	return page, nil
}

// Photo fetches a business image. Yelp hands out direct image URLs, so the
// reference is the URL itself.
func (c *YelpClient) Photo(ctx context.Context, ref string, _, _ uint) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", ref, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image fetch error: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// API response types

type businessSearchResponse struct {
	Businesses []businessDetail `json:"businesses"`
	Total      int              `json:"total"`
}

type businessDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ImageURL    string      `json:"image_url"`
	Rating      float64     `json:"rating"`
	ReviewCount int         `json:"review_count"`
	Coordinates coordinates `json:"coordinates"`
	Location    *address    `json:"location"`
}

type coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type address struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
}
