package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNominatimSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Manali" {
			t.Errorf("expected q=Manali, got %s", q.Get("q"))
		}
		if q.Get("format") != "jsonv2" {
			t.Errorf("expected format=jsonv2, got %s", q.Get("format"))
		}
		if q.Get("limit") != "6" {
			t.Errorf("expected limit=6, got %s", q.Get("limit"))
		}
		if q.Get("countrycodes") != "in" {
			t.Errorf("expected countrycodes=in, got %s", q.Get("countrycodes"))
		}
		if r.Header.Get("Accept-Language") != "en" {
			t.Errorf("expected Accept-Language en, got %s", r.Header.Get("Accept-Language"))
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("expected User-Agent test-agent, got %s", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]string{
			{"display_name": "Manali, Kullu, Himachal Pradesh, India", "lat": "32.2396", "lon": "77.1887"},
			{"display_name": "Broken", "lat": "not-a-number", "lon": "77"},
		})
	}))
	defer srv.Close()

	n := NewNominatim(srv.Client(), srv.URL, "test-agent", "in")
	places, err := n.Search(context.Background(), "Manali")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place (malformed skipped), got %d", len(places))
	}
	if places[0].Name != "Manali, Kullu, Himachal Pradesh, India" {
		t.Errorf("unexpected name %q", places[0].Name)
	}
	if places[0].Coords.Lat != 32.2396 || places[0].Coords.Lon != 77.1887 {
		t.Errorf("unexpected coords %+v", places[0].Coords)
	}
}

func TestNominatimSearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewNominatim(srv.Client(), srv.URL, "", "")
	if _, err := n.Search(context.Background(), "Pune"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestMatchPrefix(t *testing.T) {
	got := MatchPrefix("sh", 4)
	if len(got) != 1 || got[0].Name != "Shimla" {
		t.Fatalf("expected Shimla, got %+v", got)
	}

	// Every known city starts with some letter; limit bounds the result.
	if got := MatchPrefix("", 4); len(got) != 4 {
		t.Fatalf("expected limit of 4, got %d", len(got))
	}

	if _, ok := LookupCity("shimla"); ok {
		t.Fatal("lookup must be an exact name match")
	}
	if p, ok := LookupCity("Pune"); !ok || p.Coords.Lat != 18.5204 {
		t.Fatalf("expected Pune, got %+v %v", p, ok)
	}
}
