package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LocationUnavailable подставляется, когда местоположение определить не удалось
const LocationUnavailable = "Location not available"

// Geolocator определяет город и страну по IP через сервис ipapi.co
type Geolocator struct {
	baseURL string
	client  *http.Client
	log     *logrus.Entry
}

// NewGeolocator создает новый экземпляр Geolocator
func NewGeolocator(baseURL string, log *logrus.Entry) *Geolocator {
	return &Geolocator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

type ipapiResponse struct {
	City        string `json:"city"`
	CountryName string `json:"country_name"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// Locate возвращает "<город>, <страна>" или LocationUnavailable при любой ошибке
func (g *Geolocator) Locate(ctx context.Context, ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return LocationUnavailable
	}

	location, err := g.lookup(ctx, parsed.String())
	if err != nil {
		g.log.WithError(err).WithField("ip", ip).Warn("⚠️ Не удалось определить местоположение")
		return LocationUnavailable
	}
	return location
}

func (g *Geolocator) lookup(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", g.baseURL, ip), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geolocation status %d", resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ошибка разбора ответа геолокации: %w", err)
	}
	if body.Error {
		return "", fmt.Errorf("geolocation error: %s", body.Reason)
	}
	if body.City == "" || body.CountryName == "" {
		return "", fmt.Errorf("geolocation response is incomplete")
	}
	return body.City + ", " + body.CountryName, nil
}
