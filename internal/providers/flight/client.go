package flight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotConfigured = errors.New("flight: provider not configured")
	ErrInvalidFlight = errors.New("flight: invalid flight number")
	ErrNotFound      = errors.New("flight: flight not found")
)

// Status is the subset of the upstream flight feed that dispatch cares about.
type Status struct {
	FlightNumber       string     `json:"flight_number"`
	Status             string     `json:"status"`
	ScheduledArrival   *time.Time `json:"scheduled_arrival,omitempty"`
	EstimatedArrival   *time.Time `json:"estimated_arrival,omitempty"`
	ArrivalAirportCode string     `json:"arrival_airport_code,omitempty"`
	DelayMinutes       int        `json:"delay_minutes"`
}

// Provider looks up the live status of a flight.
type Provider interface {
	Lookup(ctx context.Context, flightNumber string) (*Status, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Lookup(ctx context.Context, flightNumber string) (*Status, error) {
	return nil, ErrNotConfigured
}

type Config struct {
	BaseURL string
	APIKey  string
}

type HTTPProvider struct {
	cfg    Config
	client *http.Client
}

func NewHTTP(cfg Config) *HTTPProvider {
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type statusResponse struct {
	FlightNumber     string `json:"flight_number"`
	Status           string `json:"status"`
	ScheduledArrival string `json:"scheduled_arrival"`
	EstimatedArrival string `json:"estimated_arrival"`
	ArrivalAirport   string `json:"arrival_airport"`
	DelayMinutes     int    `json:"delay_minutes"`
}

func (p *HTTPProvider) Lookup(ctx context.Context, flightNumber string) (*Status, error) {
	flightNumber = strings.ToUpper(strings.TrimSpace(flightNumber))
	if flightNumber == "" {
		return nil, ErrInvalidFlight
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/flights/" + url.PathEscape(flightNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("flight: upstream returned %d", resp.StatusCode)
	}

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("flight: decode response: %w", err)
	}

	status := &Status{
		FlightNumber:       flightNumber,
		Status:             payload.Status,
		ArrivalAirportCode: payload.ArrivalAirport,
		DelayMinutes:       payload.DelayMinutes,
	}
	if ts := parseTime(payload.ScheduledArrival); ts != nil {
		status.ScheduledArrival = ts
	}
	if ts := parseTime(payload.EstimatedArrival); ts != nil {
		status.EstimatedArrival = ts
	}
	return status, nil
}

func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
