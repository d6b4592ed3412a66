package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

const setIndexJSON = `[
	{"id": "sv6", "name": "Twilight Masquerade", "series": "Scarlet & Violet", "ptcgoCode": "TWM", "releaseDate": "2024/05/24", "total": 226},
	{"id": "sv6pt5", "name": "Shrouded Fable", "series": "Scarlet & Violet", "ptcgoCode": "SFA", "releaseDate": "2024/08/02", "total": 99},
	{"id": "svp", "name": "Scarlet & Violet Black Star Promos", "series": "Scarlet & Violet"}
]`

func newPokemonTCGDataServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sets/en.json":
			w.Write([]byte(setIndexJSON))
		case "/cards/en/sv6.json":
			w.Write([]byte(`[{"id": "sv6-95", "name": "Munkidori", "supertype": "Pokémon", "subtypes": ["Basic"], "number": "95"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSetCodeIndex_Load(t *testing.T) {
	server := newPokemonTCGDataServer(t)
	idx := NewSetCodeIndex()

	if err := idx.Load(context.Background(), NewPokemonTCGDataService(server.URL)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		code   string
		wantID string
		wantOK bool
	}{
		{"TWM", "sv6", true},
		{"twm", "sv6", true},
		{"Sfa", "sv6pt5", true},
		{"MEP", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			id, ok := idx.Lookup(tt.code)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.code, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}

	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
	if !reflect.DeepEqual(idx.Codes(), []string{"SFA", "TWM"}) {
		t.Errorf("Codes = %v", idx.Codes())
	}

	sets := idx.Sets()
	if len(sets) != 2 || sets[0].ID != "sv6pt5" || sets[1].Name != "Twilight Masquerade" {
		t.Errorf("Sets = %+v", sets)
	}
	if sets[1].Total != 226 {
		t.Errorf("Total = %d, want 226", sets[1].Total)
	}
}

func TestSetCodeIndex_LoadFailureLeavesIndexEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	idx := NewSetCodeIndex()
	idx.Replace(nil)

	err := idx.Load(context.Background(), NewPokemonTCGDataService(server.URL))
	if err == nil {
		t.Fatal("expected an error")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected a 503 FetchError, got %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}
	if _, ok := idx.Lookup("TWM"); ok {
		t.Error("lookup should miss on an empty index")
	}
}

func TestPokemonTCGDataService_FetchSet(t *testing.T) {
	server := newPokemonTCGDataServer(t)
	source := NewPokemonTCGDataService(server.URL + "/")

	cards, err := source.FetchSet(context.Background(), "sv6")
	if err != nil {
		t.Fatalf("FetchSet failed: %v", err)
	}
	if len(cards) != 1 || cards[0].Name != "Munkidori" || cards[0].Number != "95" {
		t.Errorf("unexpected cards: %+v", cards)
	}

	_, err = source.FetchSet(context.Background(), "nope")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound || fetchErr.Source != "api" {
		t.Errorf("unexpected FetchError: %+v", fetchErr)
	}
}
