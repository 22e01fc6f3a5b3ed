package mission

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/places"
)

// Details holds the contact fields a detail lookup can add to a candidate.
type Details struct {
	Phone   string
	Website string
}

// Source is the business search capability a mission runs against. Search
// failures are fatal to the mission; EnrichDetails failures are absorbed by
// the caller.
type Source interface {
	Validate() error
	Search(ctx context.Context, query, location string) ([]model.Candidate, error)
	EnrichDetails(ctx context.Context, externalID string) (Details, error)
}

// PlacesSource implements Source on the Google Places text-search API.
type PlacesSource struct {
	client     places.Client
	hasKey     bool
	maxResults int
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// PlacesSourceOption configures a PlacesSource.
type PlacesSourceOption func(*PlacesSource)

// WithMaxResults caps how many places one search returns.
func WithMaxResults(n int) PlacesSourceOption {
	return func(s *PlacesSource) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithRateLimit overrides the default request rate (10 req/s).
func WithRateLimit(rps float64) PlacesSourceOption {
	return func(s *PlacesSource) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewPlacesSource creates a PlacesSource. An empty API key is reported by
// Validate, not here, so the mission can log the failure to its event log.
func NewPlacesSource(apiKey string, opts ...PlacesSourceOption) *PlacesSource {
	s := &PlacesSource{
		client:     places.NewClient(apiKey),
		hasKey:     apiKey != "",
		maxResults: 20,
		limiter:    rate.NewLimiter(10, 1),
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPlacesSourceWithClient wraps an existing Places client. Used by tests.
func NewPlacesSourceWithClient(client places.Client, opts ...PlacesSourceOption) *PlacesSource {
	s := &PlacesSource{
		client:     client,
		hasKey:     true,
		maxResults: 20,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		retry:      resilience.RetryConfig{MaxAttempts: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PlacesSource) Validate() error {
	if !s.hasKey {
		return &ConfigurationError{Reason: "places API key is not set"}
	}
	return nil
}

// Search runs a text search. The location is folded into the query text;
// the Places API resolves "dentists in San Diego, CA" without coordinates.
func (s *PlacesSource) Search(ctx context.Context, query, location string) ([]model.Candidate, error) {
	text := query
	if location != "" {
		text = query + " in " + location
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "mission: places rate limit")
	}
	resp, err := s.client.SearchText(ctx, places.SearchRequest{
		TextQuery:      text,
		MaxResultCount: s.maxResults,
	})
	if err != nil {
		return nil, err
	}

	cands := make([]model.Candidate, 0, len(resp.Places))
	for _, p := range resp.Places {
		cands = append(cands, candidateFromPlace(p))
	}
	return cands, nil
}

// EnrichDetails fetches phone and website for one place. Transient provider
// failures are retried; the final error is surfaced for the caller to absorb.
func (s *PlacesSource) EnrichDetails(ctx context.Context, externalID string) (Details, error) {
	place, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*places.Place, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return s.client.PlaceDetails(ctx, externalID)
	})
	if err != nil {
		return Details{}, eris.Wrapf(err, "mission: place details %s", externalID)
	}
	return Details{
		Phone:   firstNonEmpty(place.NationalPhoneNumber, place.InternationalPhoneNumber),
		Website: place.WebsiteURI,
	}, nil
}

func candidateFromPlace(p places.Place) model.Candidate {
	street, city, state, zip := splitAddress(p.FormattedAddress)
	cand := model.Candidate{
		ExternalID:  p.ID,
		Name:        p.DisplayName.Text,
		Category:    p.PrimaryTypeDisplayName.Text,
		Street:      street,
		City:        city,
		State:       state,
		ZipCode:     zip,
		Phone:       firstNonEmpty(p.NationalPhoneNumber, p.InternationalPhoneNumber),
		Website:     p.WebsiteURI,
		Rating:      p.Rating,
		ReviewCount: p.UserRatingCount,
	}
	if p.Location != nil {
		lat, lng := p.Location.Latitude, p.Location.Longitude
		cand.Latitude = &lat
		cand.Longitude = &lng
	}
	return cand
}

// splitAddress breaks a US-style formatted address into components. Input
// looks like "835 4th Ave, San Diego, CA 92101, USA"; shorter forms degrade
// gracefully with empty trailing fields.
func splitAddress(addr string) (street, city, state, zip string) {
	parts := strings.Split(addr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	// Drop a trailing country token.
	if n := len(parts); n > 0 && (parts[n-1] == "USA" || parts[n-1] == "US" || parts[n-1] == "United States") {
		parts = parts[:n-1]
	}

	switch len(parts) {
	case 0:
		return "", "", "", ""
	case 1:
		return parts[0], "", "", ""
	case 2:
		state, zip = splitStateZip(parts[1])
		return "", parts[0], state, zip
	default:
		state, zip = splitStateZip(parts[len(parts)-1])
		city = parts[len(parts)-2]
		street = strings.Join(parts[:len(parts)-2], ", ")
		return street, city, state, zip
	}
}

func splitStateZip(s string) (state, zip string) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], fields[1]
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
