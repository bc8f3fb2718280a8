package geo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestProvider(url string) *IPProvider {
	p := NewIPProvider(zerolog.Nop())
	p.URL = url
	return p
}

func TestIPProvider_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ipAPIResponse{
			Status:   "success",
			Lat:      51.5074,
			Lon:      -0.1278,
			City:     "London",
			Country:  "United Kingdom",
			Timezone: "Europe/London",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	loc, err := newTestProvider(server.URL).Locate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Location{
		Latitude:  51.5074,
		Longitude: -0.1278,
		City:      "London",
		Country:   "United Kingdom",
		Timezone:  "Europe/London",
	}
	if loc != want {
		t.Errorf("Locate() = %+v, want %+v", loc, want)
	}
}

func TestIPProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "api failure status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(ipAPIResponse{Status: "fail", Message: "reserved range"})
			},
			wantMsg: "reserved range",
		},
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "internal error", http.StatusInternalServerError)
			},
			wantMsg: "500",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json at all"))
			},
			wantMsg: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestProvider(server.URL).Locate(context.Background())
			if !errors.Is(err, ErrLocationUnavailable) {
				t.Fatalf("expected ErrLocationUnavailable, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error should contain %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestIPProvider_ConnectionRefused(t *testing.T) {
	_, err := newTestProvider("http://127.0.0.1:1").Locate(context.Background())
	if !errors.Is(err, ErrLocationUnavailable) {
		t.Fatalf("expected ErrLocationUnavailable, got %v", err)
	}
}
