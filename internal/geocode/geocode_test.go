package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

type fakeGeocoder struct {
	known map[string]Coordinate
	calls []string
	err   error
}

func (f *fakeGeocoder) Geocode(_ context.Context, name string) (Coordinate, bool, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return Coordinate{}, false, f.err
	}
	coord, ok := f.known[name]
	return coord, ok, nil
}

func TestSelector_FirstMatchWins(t *testing.T) {
	t.Parallel()

	geocoder := &fakeGeocoder{known: map[string]Coordinate{
		"Lisbon": {Lat: 38.7223, Lon: -9.1393},
		"Porto":  {Lat: 41.1579, Lon: -8.6291},
	}}
	selector := NewSelector(geocoder)

	loc, ok, err := selector.Select(context.Background(), []string{"Atlantis", "Lisbon", "Porto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a resolved location")
	}
	if loc.Label != "Lisbon" {
		t.Fatalf("expected first resolvable candidate to win, got %q", loc.Label)
	}
	if len(geocoder.calls) != 2 {
		t.Fatalf("expected lookup to stop after the first hit, calls: %v", geocoder.calls)
	}
}

func TestSelector_NoCandidateResolves(t *testing.T) {
	t.Parallel()

	selector := NewSelector(&fakeGeocoder{})
	if _, ok, err := selector.Select(context.Background(), []string{"Nowhere", "Erewhon"}); err != nil || ok {
		t.Fatalf("expected no resolution and no error, got ok=%t err=%v", ok, err)
	}
}

func TestSelector_EmptyCandidates(t *testing.T) {
	t.Parallel()

	selector := NewSelector(&fakeGeocoder{})
	if _, ok, err := selector.Select(context.Background(), nil); err != nil || ok {
		t.Fatalf("expected no resolution for empty candidates, got ok=%t err=%v", ok, err)
	}
}

func TestSelector_PropagatesContextError(t *testing.T) {
	t.Parallel()

	selector := NewSelector(&fakeGeocoder{err: context.Canceled})
	if _, _, err := selector.Select(context.Background(), []string{"Lisbon"}); err == nil {
		t.Fatalf("expected geocoder error to propagate")
	}
}

func TestNominatim_ParsesFirstResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Lisbon" {
			t.Errorf("unexpected query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"lat":"38.7223","lon":"-9.1393"},{"lat":"0","lon":"0"}]`)
	}))
	defer srv.Close()

	n := NewNominatim(zerolog.Nop(), NominatimOptions{
		Endpoint:          srv.URL,
		HTTPClient:        srv.Client(),
		RequestsPerSecond: 1000,
	})

	coord, ok, err := n.Geocode(context.Background(), "Lisbon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a coordinate")
	}
	if coord.Lat != 38.7223 || coord.Lon != -9.1393 {
		t.Fatalf("unexpected coordinate: %+v", coord)
	}
}

func TestNominatim_EmptyResultIsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	n := NewNominatim(zerolog.Nop(), NominatimOptions{
		Endpoint:          srv.URL,
		HTTPClient:        srv.Client(),
		RequestsPerSecond: 1000,
	})

	if _, ok, err := n.Geocode(context.Background(), "Atlantis"); err != nil || ok {
		t.Fatalf("expected not found without error, got ok=%t err=%v", ok, err)
	}
}

func TestNominatim_ServerErrorSwallowed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNominatim(zerolog.Nop(), NominatimOptions{
		Endpoint:          srv.URL,
		HTTPClient:        srv.Client(),
		RequestsPerSecond: 1000,
	})

	if _, ok, err := n.Geocode(context.Background(), "Lisbon"); err != nil || ok {
		t.Fatalf("expected transient failure to read as not found, got ok=%t err=%v", ok, err)
	}
}

func TestNominatim_BlankName(t *testing.T) {
	t.Parallel()

	n := NewNominatim(zerolog.Nop(), NominatimOptions{RequestsPerSecond: 1000})
	if _, ok, err := n.Geocode(context.Background(), "   "); err != nil || ok {
		t.Fatalf("expected blank name to be not found, got ok=%t err=%v", ok, err)
	}
}
