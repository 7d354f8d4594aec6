package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

var (
	ErrInvalidPostalCode     = errors.New("postal code must have 8 digits")
	ErrPostalCodeNotFound    = errors.New("postal code not found")
	ErrCityNotServed         = errors.New("city not served")
	ErrNeighborhoodNotServed = errors.New("neighborhood not served")
)

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

// AddressResolver looks postal codes up on ViaCEP and enforces the service area.
// Empty allow-lists accept anything.
type AddressResolver struct {
	client        *resty.Client
	cities        map[string]struct{}
	neighborhoods map[string]struct{}
}

func NewAddressResolver(baseURL string, timeout time.Duration, cities, neighborhoods []string) *AddressResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	r := &AddressResolver{
		client:        resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout),
		cities:        foldSet(cities),
		neighborhoods: foldSet(neighborhoods),
	}
	return r
}

func (r *AddressResolver) Resolve(ctx context.Context, postalCode string) (entity.PostalAddress, error) {
	cep := digits(postalCode)
	if len(cep) != 8 {
		return entity.PostalAddress{}, ErrInvalidPostalCode
	}

	var body viaCEPResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/" + cep + "/json/")
	if err != nil {
		return entity.PostalAddress{}, fmt.Errorf("address lookup: %w", err)
	}
	if resp.StatusCode() == 400 || resp.StatusCode() == 404 {
		return entity.PostalAddress{}, ErrPostalCodeNotFound
	}
	if resp.IsError() {
		return entity.PostalAddress{}, fmt.Errorf("address lookup: status %d", resp.StatusCode())
	}
	if isTruthy(body.Erro) || body.Localidade == "" {
		return entity.PostalAddress{}, ErrPostalCodeNotFound
	}

	addr := entity.PostalAddress{
		PostalCode:   cep,
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}
	if err := r.Check(addr); err != nil {
		return addr, err
	}
	return addr, nil
}

// Check applies the city and neighborhood allow-lists, ignoring case and accents.
func (r *AddressResolver) Check(a entity.PostalAddress) error {
	if len(r.cities) > 0 {
		if _, ok := r.cities[Fold(a.City)]; !ok {
			return ErrCityNotServed
		}
	}
	if len(r.neighborhoods) > 0 {
		if _, ok := r.neighborhoods[Fold(a.Neighborhood)]; !ok {
			return ErrNeighborhoodNotServed
		}
	}
	return nil
}

// Fold lowercases s and strips diacritics: "São Paulo" -> "sao paulo".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func foldSet(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		if f := Fold(v); f != "" {
			m[f] = struct{}{}
		}
	}
	return m
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ViaCEP answers {"erro": true} or {"erro": "true"} for unknown codes.
func isTruthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(x, "true")
	}
	return false
}
