package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"equity-dashboard/config"
	"equity-dashboard/services"
)

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*config.Config)
		wantName string
		wantErr  bool
	}{
		{name: "yahoo", modify: func(*config.Config) {}, wantName: services.BreakerYahoo},
		{
			name: "alpaca",
			modify: func(c *config.Config) {
				c.Provider.Name = config.ProviderAlpaca
				c.Alpaca.APIKey = "key"
				c.Alpaca.APISecret = "secret"
			},
			wantName: services.BreakerAlpaca,
		},
		{
			name:    "alpaca without credentials",
			modify:  func(c *config.Config) { c.Provider.Name = config.ProviderAlpaca },
			wantErr: true,
		},
		{
			name:    "unknown",
			modify:  func(c *config.Config) { c.Provider.Name = "bloomberg" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewTestConfig()
			tt.modify(cfg)

			f, err := NewFetcher(cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Name() != tt.wantName {
				t.Errorf("expected %s, got %s", tt.wantName, f.Name())
			}
		})
	}
}

func TestWire_WithoutDatabase(t *testing.T) {
	services.SetGlobalRegistry(nil)
	defer services.SetGlobalRegistry(nil)

	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Symbol,Company Name\nTCS,TATA CONSULTANCY SERVICES LTD.\nINFY,INFOSYS LIMITED\n"))
	}))
	defer listing.Close()

	cfg := config.NewTestConfig()
	cfg.Listing.URL = listing.URL

	rt, err := Wire(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Wire failed: %v", err)
	}
	defer rt.Close()

	if rt.Repo != nil {
		t.Error("expected no repository without DATABASE_URL")
	}
	if rt.App.Repo() != nil {
		t.Error("App repo must be a nil interface")
	}
	if rt.App.Provider() != services.BreakerYahoo {
		t.Errorf("expected yahoo provider, got %s", rt.App.Provider())
	}

	ticker, err := rt.App.Resolver().Resolve("INFOSYS LIMITED")
	if err != nil || ticker != "INFY.NS" {
		t.Errorf("expected INFY.NS, got %q (%v)", ticker, err)
	}
}

func TestWire_ListingFailure(t *testing.T) {
	services.SetGlobalRegistry(nil)
	defer services.SetGlobalRegistry(nil)

	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer listing.Close()

	cfg := config.NewTestConfig()
	cfg.Listing.URL = listing.URL

	if _, err := Wire(context.Background(), cfg); err == nil {
		t.Error("expected error when listing cannot be loaded")
	}
}
