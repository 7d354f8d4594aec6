// Package geo resolves coordinates from client IPs and addresses from postal codes.
package geo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	mailtpl "github.com/oksasatya/vendor-directory/pkg/mailer/templates"
)

// DefaultFallback is central São Paulo.
var DefaultFallback = entity.Location{Lat: -23.5505, Lng: -46.6333}

type ipAPIResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Timezone   string  `json:"timezone"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Locator looks up an approximate position for an IP through ip-api.com.
type Locator struct {
	client   *resty.Client
	fallback entity.Location
	logger   *logrus.Logger
}

func NewLocator(baseURL string, timeout time.Duration, fallback entity.Location, logger *logrus.Logger) *Locator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	return &Locator{client: cli, fallback: fallback, logger: logger}
}

// CurrentLocation never fails: any lookup problem yields the fallback coordinate.
func (l *Locator) CurrentLocation(ctx context.Context, ip string) entity.Location {
	body, err := l.query(ctx, ip, "status,message,lat,lon")
	if err != nil {
		if l.logger != nil {
			l.logger.WithError(err).WithField("ip", ip).Debug("geolocation failed, using fallback")
		}
		return l.fallback
	}
	return entity.Location{Lat: body.Lat, Lng: body.Lon}
}

// Lookup resolves city/region/country/timezone for the email templates.
func (l *Locator) Lookup(ctx context.Context, ip string) (mailtpl.Geo, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return mailtpl.Geo{}, fmt.Errorf("empty ip")
	}
	body, err := l.query(ctx, ip, "status,message,country,regionName,city,timezone")
	if err != nil {
		return mailtpl.Geo{}, err
	}
	return mailtpl.Geo{City: body.City, Region: body.RegionName, Country: body.Country, Timezone: body.Timezone}, nil
}

func (l *Locator) query(ctx context.Context, ip, fields string) (*ipAPIResponse, error) {
	var body ipAPIResponse
	path := "/"
	if ip = strings.TrimSpace(ip); ip != "" {
		path = "/" + ip
	}
	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParam("fields", fields).
		SetResult(&body).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("geo request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geo request: status %d", resp.StatusCode())
	}
	if !strings.EqualFold(body.Status, "success") {
		return nil, fmt.Errorf("geo lookup failed: %s", body.Message)
	}
	return &body, nil
}
