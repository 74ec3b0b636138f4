package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coursehub/auth-service/internal/models"
)

// Locator derives a coarse location from the incoming request. It never
// fails a caller: when the lookup cannot be done the sentinel location is
// returned instead.
type Locator interface {
	Locate(ctx context.Context, r *http.Request) models.Location
}

// HTTPLocator resolves the client IP against an external IP-geolocation
// JSON API.
type HTTPLocator struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPLocator(baseURL string) *HTTPLocator {
	return &HTTPLocator{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (l *HTTPLocator) Locate(ctx context.Context, r *http.Request) models.Location {
	unknown := models.Location{
		City:    models.UnknownLocation,
		State:   models.UnknownLocation,
		Country: models.UnknownLocation,
	}

	ip := ClientIP(r)
	if ip == "" {
		return unknown
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", l.BaseURL, ip), nil)
	if err != nil {
		return unknown
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return unknown
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return unknown
	}

	var body struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return unknown
	}

	loc := models.Location{City: body.City, State: body.State, Country: body.Country}
	if loc.City == "" {
		loc.City = models.UnknownLocation
	}
	if loc.State == "" {
		loc.State = models.UnknownLocation
	}
	if loc.Country == "" {
		loc.Country = models.UnknownLocation
	}
	return loc
}

// ClientIP prefers the first X-Forwarded-For hop, then falls back to the
// connection's remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
