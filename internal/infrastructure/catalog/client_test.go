package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anyvolt/assistant-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://127.0.0.1:1337/", "secret")

	assert.NotNil(t, client)
	assert.Equal(t, "http://127.0.0.1:1337", client.baseURL)
	assert.Equal(t, "secret", client.token)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetByID(t *testing.T) {
	t.Run("decodes a flat product and collects specs", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products/7", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{
				"id": 7,
				"documentId": "doc-7",
				"name": "AnyVolt Super Charger 5000",
				"slug": "anyvolt-super-charger-5000",
				"description": "<p>A &nbsp; charger.</p>",
				"price": 499.5,
				"motorType": "Synchronous",
				"ratedPowerKw": 5.5,
				"hasBrake": true
			}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-token")
		product, err := client.GetByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, 7, product.ID)
		assert.Equal(t, "doc-7", product.DocumentID)
		assert.Equal(t, "AnyVolt Super Charger 5000", product.Name)
		assert.NotContains(t, product.Description, "<p>")
		require.NotNil(t, product.Price)
		assert.Equal(t, 499.5, *product.Price)
		assert.Equal(t, "Synchronous", product.SpecString(domain.SpecMotorType))

		power, ok := product.SpecNumber(domain.SpecRatedPowerKw)
		require.True(t, ok)
		assert.Equal(t, 5.5, power)

		brake, ok := product.SpecBool(domain.SpecHasBrake)
		require.True(t, ok)
		assert.True(t, brake)

		// Known top-level attributes must not leak into the spec map
		_, hasName := product.Specs["name"]
		assert.False(t, hasName)
	})

	t.Run("decodes the nested attributes shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{
				"id": 3,
				"attributes": {"name": "AnyVolt Drive 90", "description": "", "motorFamily": "Servo"}
			}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		product, err := client.GetByID(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, 3, product.ID)
		assert.Equal(t, "AnyVolt Drive 90", product.Name)
		assert.Equal(t, "Servo", product.SpecString(domain.SpecMotorFamily))
	})

	t.Run("maps 404 to ErrProductNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		_, err := client.GetByID(context.Background(), 99)

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("surfaces repeated server errors as upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		_, err := client.GetByID(context.Background(), 1)

		assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
	})
}

func TestGetByDocumentID(t *testing.T) {
	t.Run("queries the published filter and returns the first hit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products", r.URL.Path)
			assert.Equal(t, "abc123", r.URL.Query().Get("filters[documentId][$eq]"))
			assert.Equal(t, "live", r.URL.Query().Get("publicationState"))
			assert.Equal(t, "1", r.URL.Query().Get("pagination[limit]"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":[{"id": 11, "documentId": "abc123", "name": "AnyVolt Lift Motor"}]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		product, err := client.GetByDocumentID(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, 11, product.ID)
		assert.Equal(t, "AnyVolt Lift Motor", product.Name)
	})

	t.Run("returns ErrProductNotFound for an empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		_, err := client.GetByDocumentID(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestListAll(t *testing.T) {
	t.Run("pages through the whole catalog", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Query().Get("pagination[page]") {
			case "1":
				w.Write([]byte(`{
					"data":[{"id": 1, "name": "Motor A"},{"id": 2, "name": "Motor B"}],
					"meta":{"pagination":{"page":1,"pageCount":2}}
				}`))
			case "2":
				w.Write([]byte(`{
					"data":[{"id": 3, "name": "Motor C"}],
					"meta":{"pagination":{"page":2,"pageCount":2}}
				}`))
			default:
				t.Errorf("unexpected page: %s", r.URL.Query().Get("pagination[page]"))
			}
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		products, err := client.ListAll(context.Background())

		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Motor A", products[0].Name)
		assert.Equal(t, "Motor C", products[2].Name)
	})
}

func TestListNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "name", r.URL.Query().Get("fields[0]"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":1,"name":"Motor A"},{"id":2,"name":""},{"id":3,"name":"Motor C"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	names, err := client.ListNames(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"Motor A", "Motor C"}, names)
}
