package geometry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"surfgen/internal/core"
)

func testSlab() core.Structure {
	return core.Structure{
		Symbols:   []string{"Pt", "Pt"},
		Positions: [][3]float64{{0, 0, 1}, {0, 0, 3}},
		Cell:      [3][3]float64{{3, 0, 0}, {0, 3, 0}, {0, 0, 30}},
		PBC:       [3]bool{true, true, false},
	}
}

func TestHTTPOperationsTransformRoundTrip(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req structureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// Echo the structure back flipped, as a real service would.
		for i := range req.Structure.Atoms {
			req.Structure.Atoms[i].Position[2] = -req.Structure.Atoms[i].Position[2]
		}
		_ = json.NewEncoder(w).Encode(structureResponse{Structure: req.Structure})
	}))
	defer srv.Close()

	ops := NewHTTPOperations(srv.URL)
	out, err := ops.Flip(context.Background(), testSlab())
	if err != nil {
		t.Fatalf("Flip() err=%v", err)
	}
	if gotPath != "/v1/flip" {
		t.Fatalf("request path = %q", gotPath)
	}
	if out.Positions[0][2] != -1 || out.Positions[1][2] != -3 {
		t.Fatalf("flip did not round-trip: %+v", out.Positions)
	}
}

func TestHTTPOperationsEnumerateSlabs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req enumerateSlabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Miller != ([3]int{1, 1, 1}) {
			http.Error(w, "wrong miller", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(enumerateSlabsResponse{
			Slabs: []wireSlab{
				{Structure: req.Bulk, Shift: 0.25},
				{Structure: req.Bulk, Shift: 0.5},
			},
		})
	}))
	defer srv.Close()

	ops := NewHTTPOperations(srv.URL)
	slabs, err := ops.EnumerateSlabs(context.Background(), testSlab(), [3]int{1, 1, 1},
		Settings{"min_slab_size": 7.0}, Settings{"tol": 0.3})
	if err != nil {
		t.Fatalf("EnumerateSlabs() err=%v", err)
	}
	if len(slabs) != 2 || slabs[0].Shift != 0.25 || slabs[1].Shift != 0.5 {
		t.Fatalf("unexpected slabs: %+v", slabs)
	}
}

func TestHTTPOperationsSurfaceServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no valid terminations", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	ops := NewHTTPOperations(srv.URL)
	_, err := ops.OrientUpward(context.Background(), testSlab())
	if err == nil || !strings.Contains(err.Error(), "no valid terminations") {
		t.Fatalf("err=%v, want service message surfaced", err)
	}
}

func TestHTTPOperationsRequireEndpoint(t *testing.T) {
	ops := NewHTTPOperations("")
	if _, err := ops.OrientUpward(context.Background(), testSlab()); err == nil {
		t.Fatalf("expected error for unconfigured endpoint")
	}
}
