// Package audit fetches a candidate's website and extracts the technical
// signals that feed the scoring engine. Audits never fail: timeouts and
// fetch errors degrade into a conservative default result tagged with a
// marker CMS hint.
package audit

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

const (
	defaultFetchTimeout = 8 * time.Second
	defaultBodyTimeout  = 5 * time.Second

	// maxBodyBytes limits how much HTML is downloaded per audit.
	maxBodyBytes = 512 * 1024

	userAgent = "Mozilla/5.0 (compatible; leadscout/1.0)"
)

// Auditor probes websites for technical signals.
type Auditor struct {
	client       *http.Client
	fetchTimeout time.Duration
	bodyTimeout  time.Duration
}

// Option configures the Auditor.
type Option func(*Auditor)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Auditor) {
		a.client = hc
	}
}

// WithTimeouts overrides the fetch and body-read timeouts.
func WithTimeouts(fetch, body time.Duration) Option {
	return func(a *Auditor) {
		if fetch > 0 {
			a.fetchTimeout = fetch
		}
		if body > 0 {
			a.bodyTimeout = body
		}
	}
}

// New creates an Auditor.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		client:       &http.Client{},
		fetchTimeout: defaultFetchTimeout,
		bodyTimeout:  defaultBodyTimeout,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Audit fetches the website and extracts signals. It always returns a
// usable AuditResult: an empty website, a timeout, or a fetch error each
// produce the all-false default with the corresponding marker hint.
func (a *Auditor) Audit(ctx context.Context, website string) model.AuditResult {
	result := model.AuditResult{AuditedAt: time.Now().UTC()}

	if strings.TrimSpace(website) == "" {
		result.CMSHint = model.CMSHintNoWebsite
		return result
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, website, nil)
	if err != nil {
		result.CMSHint = model.CMSHintFetchError
		return result
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		result.CMSHint = classifyFetchFailure(err)
		result.LoadMillis = time.Since(start).Milliseconds()
		zap.L().Debug("audit: fetch failed",
			zap.String("website", website),
			zap.String("hint", result.CMSHint),
			zap.Error(err),
		)
		return result
	}
	defer resp.Body.Close() //nolint:errcheck

	// HTTPS checked on the final URL so redirect-to-https counts.
	result.HTTPS = resp.Request.URL.Scheme == "https"

	body := a.readBody(fetchCtx, resp.Body)
	result.LoadMillis = time.Since(start).Milliseconds()

	analyzePage(&result, string(body))
	return result
}

// readBody reads up to maxBodyBytes under the nested body-read deadline.
// A slow body yields whatever was read before the deadline; the signals
// are then extracted from the partial document.
func (a *Auditor) readBody(ctx context.Context, r io.ReadCloser) []byte {
	bodyCtx, cancel := context.WithTimeout(ctx, a.bodyTimeout)
	defer cancel()

	type readResult struct {
		data []byte
	}
	done := make(chan readResult, 1)
	go func() {
		data, _ := io.ReadAll(io.LimitReader(r, maxBodyBytes))
		done <- readResult{data: data}
	}()

	select {
	case res := <-done:
		return res.data
	case <-bodyCtx.Done():
		r.Close()
		res := <-done
		return res.data
	}
}

// classifyFetchFailure distinguishes the timeout marker from the generic
// fetch-error marker.
func classifyFetchFailure(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.CMSHintTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.CMSHintTimeout
	}
	return model.CMSHintFetchError
}

// bookingMarkers are the affordances counted as online booking.
var bookingMarkers = []string{
	"book now", "book online", "book an appointment", "book appointment",
	"schedule an appointment", "schedule now", "request an appointment",
	"calendly.com", "acuityscheduling", "squareup.com/appointments",
	"setmore.com", "booksy.com", "zocdoc.com",
}

// analyticsFingerprints maps a detected pixel name to its page markers.
var analyticsFingerprints = []struct {
	name    string
	markers []string
}{
	{"google-analytics", []string{"google-analytics.com", "gtag(", "ga('create'"}},
	{"google-tag-manager", []string{"googletagmanager.com"}},
	{"facebook-pixel", []string{"connect.facebook.net", "fbq("}},
	{"hotjar", []string{"hotjar.com"}},
	{"microsoft-clarity", []string{"clarity.ms"}},
	{"linkedin-insight", []string{"snap.licdn.com"}},
	{"tiktok-pixel", []string{"analytics.tiktok.com"}},
}

// cmsFingerprints maps a CMS hint to its page markers. Generator meta tags
// are checked first in analyzePage; these cover sites that strip them.
var cmsFingerprints = []struct {
	name    string
	markers []string
}{
	{"wordpress", []string{"wp-content", "wp-includes"}},
	{"wix", []string{"wix.com", "wixstatic.com"}},
	{"squarespace", []string{"squarespace.com", "static1.squarespace"}},
	{"shopify", []string{"cdn.shopify.com", "myshopify.com"}},
	{"weebly", []string{"weebly.com"}},
	{"godaddy", []string{"godaddysites.com", "secureserver.net"}},
	{"joomla", []string{"/media/jui/"}},
	{"drupal", []string{"drupal.js", "/sites/default/files"}},
}

// analyzePage fills the content-derived signals from raw HTML.
func analyzePage(result *model.AuditResult, html string) {
	lower := strings.ToLower(html)

	result.MobileViewport = strings.Contains(lower, `name="viewport"`) ||
		strings.Contains(lower, `name='viewport'`)

	result.StructuredData = strings.Contains(lower, "application/ld+json") ||
		strings.Contains(lower, "itemscope")

	for _, marker := range bookingMarkers {
		if strings.Contains(lower, marker) {
			result.Booking = true
			break
		}
	}

	for _, fp := range analyticsFingerprints {
		for _, marker := range fp.markers {
			if strings.Contains(lower, marker) {
				result.Analytics = append(result.Analytics, fp.name)
				break
			}
		}
	}

	result.CMSHint = detectCMS(lower)
}

func detectCMS(lower string) string {
	if hint := generatorHint(lower); hint != "" {
		return hint
	}
	for _, fp := range cmsFingerprints {
		for _, marker := range fp.markers {
			if strings.Contains(lower, marker) {
				return fp.name
			}
		}
	}
	return ""
}

// generatorHint extracts a CMS name from a meta generator tag if one of the
// known fingerprints appears in its content.
func generatorHint(lower string) string {
	idx := strings.Index(lower, `name="generator"`)
	if idx < 0 {
		idx = strings.Index(lower, `name='generator'`)
	}
	if idx < 0 {
		return ""
	}
	end := strings.Index(lower[idx:], ">")
	if end < 0 {
		return ""
	}
	tag := lower[idx : idx+end]
	for _, fp := range cmsFingerprints {
		if strings.Contains(tag, fp.name) {
			return fp.name
		}
	}
	return ""
}
