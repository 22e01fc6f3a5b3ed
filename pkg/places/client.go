// Package places wraps the Google Places API (New) text search and place
// details endpoints used for business discovery.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

const searchFieldMask = "places.id,places.displayName,places.formattedAddress," +
	"places.primaryTypeDisplayName,places.nationalPhoneNumber," +
	"places.internationalPhoneNumber,places.websiteUri,places.rating," +
	"places.userRatingCount,places.location"

const detailsFieldMask = "id,nationalPhoneNumber,internationalPhoneNumber,websiteUri"

// Client performs Google Places API operations.
type Client interface {
	SearchText(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	PlaceDetails(ctx context.Context, placeID string) (*Place, error)
}

// SearchRequest is the input to a text search.
type SearchRequest struct {
	TextQuery      string      `json:"textQuery"`
	MaxResultCount int         `json:"maxResultCount,omitempty"`
	LocationBias   *CircleBias `json:"locationBias,omitempty"`
}

// CircleBias biases results toward a circle. Optional; missions without
// coordinates fold the location into the text query instead.
type CircleBias struct {
	Circle Circle `json:"circle"`
}

// Circle is a center point plus radius in meters.
type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchResponse is the response from a text search. An empty Places slice
// is a valid result, not an error.
type SearchResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by the API.
type Place struct {
	ID                       string      `json:"id"`
	DisplayName              DisplayName `json:"displayName"`
	FormattedAddress         string      `json:"formattedAddress"`
	PrimaryTypeDisplayName   DisplayName `json:"primaryTypeDisplayName"`
	NationalPhoneNumber      string      `json:"nationalPhoneNumber"`
	InternationalPhoneNumber string      `json:"internationalPhoneNumber"`
	WebsiteURI               string      `json:"websiteUri"`
	Rating                   float64     `json:"rating"`
	UserRatingCount          int         `json:"userRatingCount"`
	Location                 *LatLng     `json:"location,omitempty"`
}

// DisplayName holds a localized display string.
type DisplayName struct {
	Text string `json:"text"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchText(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal search request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create search request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", searchFieldMask)

	respBody, err := c.send(httpReq)
	if err != nil {
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal search response")
	}
	return &result, nil
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string) (*Place, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+placeID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create details request")
	}
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	respBody, err := c.send(httpReq)
	if err != nil {
		return nil, err
	}

	var place Place
	if err := json.Unmarshal(respBody, &place); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal details response")
	}
	return &place, nil
}

// send executes the request and maps non-200 statuses onto the typed error
// taxonomy (auth, quota/denied, invalid request).
func (c *httpClient) send(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
