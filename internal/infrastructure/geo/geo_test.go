package geo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

func jsonServer(t *testing.T, h func(r *http.Request) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, body := h(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLocator_CurrentLocation(t *testing.T) {
	var gotPath, gotFields string
	srv := jsonServer(t, func(r *http.Request) (int, string) {
		gotPath, gotFields = r.URL.Path, r.URL.Query().Get("fields")
		return 200, `{"status":"success","lat":-22.9,"lon":-43.2}`
	})
	l := NewLocator(srv.URL, time.Second, DefaultFallback, nil)

	loc := l.CurrentLocation(context.Background(), "8.8.8.8")
	assert.Equal(t, entity.Location{Lat: -22.9, Lng: -43.2}, loc)
	assert.Equal(t, "/8.8.8.8", gotPath)
	assert.Equal(t, "status,message,lat,lon", gotFields)
}

func TestLocator_FallsBack(t *testing.T) {
	failing := jsonServer(t, func(*http.Request) (int, string) {
		return 200, `{"status":"fail","message":"private range"}`
	})
	l := NewLocator(failing.URL, time.Second, DefaultFallback, nil)
	assert.Equal(t, DefaultFallback, l.CurrentLocation(context.Background(), "10.0.0.1"))

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	l = NewLocator(slow.URL, 50*time.Millisecond, DefaultFallback, nil)
	assert.Equal(t, DefaultFallback, l.CurrentLocation(context.Background(), ""))
}

func TestLocator_Lookup(t *testing.T) {
	srv := jsonServer(t, func(*http.Request) (int, string) {
		return 200, `{"status":"success","city":"Campinas","regionName":"São Paulo","country":"Brazil","timezone":"America/Sao_Paulo"}`
	})
	g, err := NewLocator(srv.URL, time.Second, DefaultFallback, nil).Lookup(context.Background(), "1.1.1.1")
	require.NoError(t, err)
	assert.Equal(t, "Campinas", g.City)
	assert.Equal(t, "America/Sao_Paulo", g.Timezone)

	_, err = NewLocator(srv.URL, time.Second, DefaultFallback, nil).Lookup(context.Background(), " ")
	assert.Error(t, err)
}

func TestAddressResolver_Resolve(t *testing.T) {
	srv := jsonServer(t, func(r *http.Request) (int, string) {
		switch r.URL.Path {
		case "/01001000/json/":
			return 200, `{"cep":"01001-000","logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`
		case "/20040002/json/":
			return 200, `{"cep":"20040-002","logradouro":"Rua da Assembleia","bairro":"Centro","localidade":"Rio de Janeiro","uf":"RJ"}`
		default:
			return 200, `{"erro":"true"}`
		}
	})
	r := NewAddressResolver(srv.URL, time.Second, []string{"sao paulo"}, []string{"se", "Pinheiros"})
	ctx := context.Background()

	a, err := r.Resolve(ctx, "01001-000")
	require.NoError(t, err)
	assert.Equal(t, "Sé", a.Neighborhood)
	assert.Equal(t, "Praça da Sé, 10, Sé, São Paulo - SP", a.Format("10"))

	_, err = r.Resolve(ctx, "20040-002")
	assert.ErrorIs(t, err, ErrCityNotServed)

	_, err = r.Resolve(ctx, "99999-999")
	assert.ErrorIs(t, err, ErrPostalCodeNotFound)

	_, err = r.Resolve(ctx, "123")
	assert.ErrorIs(t, err, ErrInvalidPostalCode)
}

func TestAddressResolver_NeighborhoodAllowList(t *testing.T) {
	r := NewAddressResolver("http://unused", time.Second, nil, []string{"Pinheiros"})
	assert.NoError(t, r.Check(entity.PostalAddress{City: "São Paulo", Neighborhood: "PINHEIROS"}))
	assert.ErrorIs(t, r.Check(entity.PostalAddress{City: "São Paulo", Neighborhood: "Moema"}), ErrNeighborhoodNotServed)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "sao paulo", Fold("  São Paulo "))
	assert.Equal(t, "acai", Fold("AÇAÍ"))
}
