package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchText_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Goog-FieldMask"))

		w.Write([]byte(`{
			"places": [
				{
					"id": "place-1",
					"displayName": {"text": "Acme Dental"},
					"formattedAddress": "123 Main St, San Diego, CA 92101, USA",
					"primaryTypeDisplayName": {"text": "Dentist"},
					"nationalPhoneNumber": "(619) 555-0001",
					"websiteUri": "https://acmedental.com",
					"rating": 4.5,
					"userRatingCount": 120
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.SearchText(context.Background(), SearchRequest{TextQuery: "dentists in San Diego"})
	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	assert.Equal(t, "place-1", resp.Places[0].ID)
	assert.Equal(t, "Acme Dental", resp.Places[0].DisplayName.Text)
	assert.Equal(t, "Dentist", resp.Places[0].PrimaryTypeDisplayName.Text)
}

func TestSearchText_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.SearchText(context.Background(), SearchRequest{TextQuery: "nothing here"})
	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func TestSearchText_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"401 is auth", http.StatusUnauthorized, IsAuth},
		{"403 is quota", http.StatusForbidden, IsQuota},
		{"429 is quota", http.StatusTooManyRequests, IsQuota},
		{"400 is invalid request", http.StatusBadRequest, IsInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"nope"}}`, tt.status)
			}))
			defer srv.Close()

			c := NewClient("test-key", WithBaseURL(srv.URL))
			_, err := c.SearchText(context.Background(), SearchRequest{TextQuery: "x"})
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestSearchText_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.SearchText(context.Background(), SearchRequest{TextQuery: "x"})
	require.Error(t, err)
	assert.False(t, IsAuth(err))
	assert.False(t, IsQuota(err))
	assert.False(t, IsInvalidRequest(err))
}

func TestPlaceDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/place-1", r.URL.Path)
		w.Write([]byte(`{
			"id": "place-1",
			"nationalPhoneNumber": "(619) 555-0001",
			"websiteUri": "https://acmedental.com"
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	place, err := c.PlaceDetails(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Equal(t, "(619) 555-0001", place.NationalPhoneNumber)
	assert.Equal(t, "https://acmedental.com", place.WebsiteURI)
}
