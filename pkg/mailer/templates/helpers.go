package templates

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/oksasatya/vendor-directory/config"
)

const textTimeLayout = "02/01/2006 15:04"

// Branding is the company block every email carries.
type Branding struct {
	CompanyName    string
	CompanyAddress string
	AppName        string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
}

func BrandingFrom(cfg *config.Config) Branding {
	return Branding{
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.CompanyName,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
	}
}

// Apply fills the branding keys that data does not set already.
func (b Branding) Apply(data map[string]any) {
	for k, v := range map[string]string{
		"CompanyName":    b.CompanyName,
		"CompanyAddress": b.CompanyAddress,
		"AppName":        b.AppName,
		"LogoURL":        b.LogoURL,
		"SupportURL":     b.SupportURL,
		"PrivacyURL":     b.PrivacyURL,
	} {
		if isBlank(data[k]) {
			data[k] = v
		}
	}
}

// EnsureRecipient defaults Email and RecipientEmail to the job recipient.
func EnsureRecipient(data map[string]any, to string) {
	if isBlank(data["Email"]) {
		data["Email"] = to
	}
	if isBlank(data["RecipientEmail"]) {
		data["RecipientEmail"] = to
	}
}

// Localize renders TimeAt and ExpiresAt as text in the caller's timezone. The
// timezone comes from the IP when r can resolve it, otherwise from fallback.
// A resolved place is also stored under Location.
func Localize(ctx context.Context, r GeoResolver, data map[string]any, fallback *time.Location) {
	loc := fallback
	if loc == nil {
		loc = time.UTC
	}
	if ip := strings.TrimSpace(fmt.Sprint(data["IP"])); r != nil && !isBlank(data["IP"]) {
		if g, err := r.Lookup(ctx, ip); err == nil {
			if isBlank(data["Location"]) {
				if place := FormatGeo(g); place != "" {
					data["Location"] = place
				}
			}
			if tz, err := time.LoadLocation(strings.TrimSpace(g.Timezone)); err == nil && g.Timezone != "" {
				loc = tz
			}
		}
	}
	if t, ok := parseTimeAny(data["TimeAt"]); ok {
		data["Time"] = t.In(loc).Format(textTimeLayout)
	}
	if t, ok := parseTimeAny(data["ExpiresAt"]); ok {
		data["ExpiresAtText"] = t.In(loc).Format(textTimeLayout)
	}
}

// parseTimeAny accepts a time.Time or the string forms it takes after a JSON
// round trip.
func parseTimeAny(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case nil:
		return time.Time{}, false
	}
	s := fmt.Sprint(v)
	for _, l := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05 -0700 MST"} {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(fmt.Sprint(v)) == ""
}
