package npsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/parkpulse/nps-backend/internal/catalog"
)

const defaultBaseURL = "https://developer.nps.gov/api/v1"

// pageSize matches the public park count, so the catalogue normally arrives
// in a single page; the pager still follows up if the service returns less.
const pageSize = 500

// Client talks to the public NPS API. Boundary lookups run one request per
// park, so they sit behind a politeness limiter.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(4), 1), // 4 req/s against mapdata
	}
}

type parkPage struct {
	Total string `json:"total"`
	Data  []struct {
		ParkCode    string `json:"parkCode"`
		FullName    string `json:"fullName"`
		States      string `json:"states"`
		Designation string `json:"designation"`
		Latitude    string `json:"latitude"`
		Longitude   string `json:"longitude"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"data"`
}

// FetchParks pages through /parks and returns the simplified park records.
// Region assignment is not part of the API response; the CSV backfill pass
// fills it in later.
func (c *Client) FetchParks(ctx context.Context) ([]catalog.Park, error) {
	if c.apiKey == "" {
		return nil, errors.New("NPS_API_KEY is not set")
	}

	var parks []catalog.Park
	for start := 0; ; start += pageSize {
		q := url.Values{}
		q.Set("api_key", c.apiKey)
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("start", strconv.Itoa(start))
		endpoint := c.baseURL + "/parks?" + q.Encode()

		logRequest(http.MethodGet, c.baseURL+"/parks", start)
		began := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			logError("fetch parks", err)
			return nil, err
		}

		var page parkPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("parks request returned %d", resp.StatusCode)
		}
		if err != nil {
			return nil, fmt.Errorf("decode parks page: %w", err)
		}
		logResponse(resp.StatusCode, time.Since(began), len(page.Data))

		for _, p := range page.Data {
			if p.ParkCode == "" {
				continue
			}
			park := catalog.Park{
				ParkCode:    strings.ToUpper(p.ParkCode),
				ParkName:    p.FullName,
				Designation: p.Designation,
			}
			if p.States != "" {
				park.States = strings.Split(p.States, ",")
			}
			if lat, err := strconv.ParseFloat(p.Latitude, 64); err == nil {
				park.Latitude = &lat
			}
			if lon, err := strconv.ParseFloat(p.Longitude, 64); err == nil {
				park.Longitude = &lon
			}
			if p.Description != "" {
				desc := p.Description
				park.Description = &desc
			}
			if p.URL != "" {
				site := p.URL
				park.Website = &site
			}
			parks = append(parks, park)
		}

		if len(page.Data) < pageSize {
			return parks, nil
		}
	}
}

// FetchBoundary returns the park's boundary GeoJSON as a raw string. Callers
// treat a failure as "boundary unavailable", never as a fatal load error.
func (c *Client) FetchBoundary(ctx context.Context, parkCode string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/mapdata/parkboundaries/%s?api_key=%s",
		c.baseURL, strings.ToLower(parkCode), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("boundary request returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if !json.Valid(body) {
		return "", errors.New("boundary response is not valid JSON")
	}
	return string(body), nil
}
