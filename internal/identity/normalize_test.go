package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"https with www and slash", "https://www.acme.com/", "acme.com"},
		{"http bare", "http://acme.com", "acme.com"},
		{"no scheme", "acme.com", "acme.com"},
		{"www no scheme", "www.acme.com", "acme.com"},
		{"path stripped", "https://acme.com/contact/us", "acme.com"},
		{"port stripped", "https://acme.com:8443/", "acme.com"},
		{"mixed case", "HTTPS://WWW.Acme.COM", "acme.com"},
		{"subdomain kept", "https://shop.acme.com", "shop.acme.com"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"localhost rejected", "http://localhost", ""},
		{"localhost bare", "localhost", ""},
		{"garbage with embedded host", "visit acme.com today", "acme.com"},
		{"trailing dot", "acme.com.", "acme.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizeDomain(tt.input))
		})
	}
}

func TestNormalizeDomain_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.acme.com/",
		"http://shop.example.org/page?q=1",
		"WWW.Mixed-Case.NET",
		"plumber-sandiego.com",
	}
	for _, in := range inputs {
		once := NormalizeDomain(in)
		assert.Equal(t, once, NormalizeDomain(once), "input %q", in)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"dashed US", "619-233-3338", "+16192333338"},
		{"US with country code", "1-619-233-3338", "+16192333338"},
		{"parenthesized", "(619) 233-3338", "+16192333338"},
		{"already e164", "+16192333338", "+16192333338"},
		{"international 12 digits", "+44 20 7946 0958", "+442079460958"},
		{"letters", "abc", ""},
		{"too short", "233-3338", ""},
		{"too long", "1234567890123456", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"lowercase and punctuation", "Joe's Plumbing, Inc.", "joe s plumbing inc"},
		{"collapse whitespace", "  Acme   Dental  ", "acme dental"},
		{"diacritics folded", "Café Motörhead", "cafe motorhead"},
		{"digits kept", "24/7 Towing", "24 7 towing"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizeName(tt.input))
		})
	}
}
