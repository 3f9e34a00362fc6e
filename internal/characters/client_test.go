package characters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/letphil/dbz-auto-arena/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fixedSource struct {
	vals []int
	next int
}

func (s *fixedSource) IntN(n int) int {
	v := s.vals[s.next%len(s.vals)]
	s.next++
	return v % n
}

func newTestServer(t *testing.T, roster map[int]string, kis map[int]string, listCalls *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/characters", func(w http.ResponseWriter, r *http.Request) {
		if listCalls != nil {
			*listCalls++
		}
		fmt.Fprintf(w, `{"items": [], "meta": {"totalItems": %d}}`, len(roster))
	})
	mux.HandleFunc("/characters/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(r.URL.Path, "/characters/%d", &id)
		name, ok := roster[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"message": "Character with id %d not found"}`, id)
			return
		}
		fmt.Fprintf(w, `{"id": %d, "name": %q, "ki": %q}`, id, name, kis[id])
	})
	return httptest.NewServer(mux)
}

func TestParseKi(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"60.000.000", 60000000, false},
		{"3,500", 3500, false},
		{" 500 ", 500, false},
		{"0", 0, false},
		{"969 Googolplex", 0, true},
		{"unknown", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseKi(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnparsableKi) {
				t.Fatalf("ParseKi(%q): expected ErrUnparsableKi, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseKi(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestFetchCharacterByID_ClampsVitality(t *testing.T) {
	srv := newTestServer(t, map[int]string{1: "Goku"}, map[int]string{1: "60.000.000"}, nil)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, MaxVitality: 9000})
	cb, err := c.FetchCharacterByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.Name != "Goku" || cb.SourceID != 1 {
		t.Fatalf("unexpected combatant: %+v", cb)
	}
	if cb.Vitality != 9000 {
		t.Fatalf("expected vitality clamped to 9000, got %d", cb.Vitality)
	}
}

func TestFetchCharacterByID_NotFound(t *testing.T) {
	srv := newTestServer(t, map[int]string{}, nil, nil)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	if _, err := c.FetchCharacterByID(context.Background(), 99); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
}

func TestFetchRandomCombatant_RetriesUnusableIDs(t *testing.T) {
	// Roster reports three ids; id 1 is missing and id 2 has textual ki, so
	// only id 3 can be used. The scripted source walks ids 1, 2, 3.
	roster := map[int]string{2: "Broly", 3: "Krillin"}
	kis := map[int]string{2: "969 Googolplex", 3: "1.000"}
	mux := http.NewServeMux()
	mux.HandleFunc("/characters", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [], "meta": {"totalItems": 3}}`)
	})
	mux.HandleFunc("/characters/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(r.URL.Path, "/characters/%d", &id)
		name, ok := roster[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"id": %d, "name": %q, "ki": %q}`, id, name, kis[id])
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Attempts: 3, Random: &fixedSource{vals: []int{0, 1, 2}}})
	cb, err := c.FetchRandomCombatant(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.Name != "Krillin" || cb.Vitality != 1000 {
		t.Fatalf("unexpected combatant: %+v", cb)
	}
}

func TestFetchRandomCombatant_ExhaustsAttempts(t *testing.T) {
	// Roster claims one character but every fetch 404s.
	mux := http.NewServeMux()
	mux.HandleFunc("/characters", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [], "meta": {"totalItems": 1}}`)
	})
	mux.HandleFunc("/characters/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv2 := httptest.NewServer(mux)
	defer srv2.Close()

	c := New(Options{BaseURL: srv2.URL, Attempts: 2, Random: &fixedSource{vals: []int{0}}})
	if _, err := c.FetchRandomCombatant(context.Background()); !errors.Is(err, ErrNoAttemptsLeft) {
		t.Fatalf("expected ErrNoAttemptsLeft, got %v", err)
	}
}

func TestFetchRandomCombatant_ConcurrentOnSharedClient(t *testing.T) {
	// A single client with the default random source serves concurrent
	// requests; simultaneous fetches must not race on RNG state.
	srv := newTestServer(t, map[int]string{1: "Goku", 2: "Vegeta"}, map[int]string{1: "500", 2: "600"}, nil)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if _, err := c.FetchRandomCombatant(context.Background()); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRosterSize_CachedAfterFirstLookup(t *testing.T) {
	calls := 0
	srv := newTestServer(t, map[int]string{1: "Goku"}, map[int]string{1: "500"}, &calls)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	for i := 0; i < 3; i++ {
		if _, err := c.RosterSize(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single roster lookup, got %d", calls)
	}
}
