package geometry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"surfgen/internal/core"
)

// HTTPOperations implements Operations against a geometry sidecar service
// speaking a small JSON protocol: POST {base}/v1/{op} with documents as the
// structure wire format.
type HTTPOperations struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPOperations builds a client for the sidecar at baseURL.
func NewHTTPOperations(baseURL string) *HTTPOperations {
	return &HTTPOperations{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type enumerateSlabsRequest struct {
	Bulk        core.Document `json:"bulk"`
	Miller      [3]int        `json:"miller"`
	Generator   Settings      `json:"generator_settings,omitempty"`
	Enumeration Settings      `json:"enumeration_settings,omitempty"`
}

type wireSlab struct {
	Structure core.Document `json:"structure"`
	Shift     float64       `json:"shift"`
}

type enumerateSlabsResponse struct {
	Slabs []wireSlab `json:"slabs"`
}

func (h *HTTPOperations) EnumerateSlabs(ctx context.Context, bulk core.Structure, miller [3]int, generator, enumeration Settings) ([]Slab, error) {
	req := enumerateSlabsRequest{
		Bulk:        core.StructureToDocument(bulk),
		Miller:      miller,
		Generator:   generator,
		Enumeration: enumeration,
	}
	var resp enumerateSlabsResponse
	if err := h.call(ctx, "enumerate_slabs", req, &resp); err != nil {
		return nil, err
	}
	slabs := make([]Slab, 0, len(resp.Slabs))
	for i, ws := range resp.Slabs {
		s, err := core.DocumentToStructure(ws.Structure)
		if err != nil {
			return nil, fmt.Errorf("enumerate_slabs: slab %d: %w", i, err)
		}
		slabs = append(slabs, Slab{Structure: s, Shift: ws.Shift})
	}
	return slabs, nil
}

func (h *HTTPOperations) OrientUpward(ctx context.Context, s core.Structure) (core.Structure, error) {
	return h.transform(ctx, "orient_upward", s)
}

func (h *HTTPOperations) ApplySubsurfaceConstraints(ctx context.Context, s core.Structure) (core.Structure, error) {
	return h.transform(ctx, "constrain_subsurface", s)
}

func (h *HTTPOperations) Flip(ctx context.Context, s core.Structure) (core.Structure, error) {
	return h.transform(ctx, "flip", s)
}

func (h *HTTPOperations) IsInvertible(ctx context.Context, s core.Structure) (bool, error) {
	req := structureRequest{Structure: core.StructureToDocument(s)}
	var resp struct {
		Invertible bool `json:"invertible"`
	}
	if err := h.call(ctx, "is_invertible", req, &resp); err != nil {
		return false, err
	}
	return resp.Invertible, nil
}

func (h *HTTPOperations) TileToMinimumSize(ctx context.Context, s core.Structure, minX, minY float64) (core.Structure, [2]int, error) {
	req := struct {
		Structure core.Document `json:"structure"`
		MinX      float64       `json:"min_x"`
		MinY      float64       `json:"min_y"`
	}{core.StructureToDocument(s), minX, minY}
	var resp struct {
		Structure core.Document `json:"structure"`
		Repeat    [2]int        `json:"repeat"`
	}
	if err := h.call(ctx, "tile", req, &resp); err != nil {
		return core.Structure{}, [2]int{}, err
	}
	tiled, err := core.DocumentToStructure(resp.Structure)
	if err != nil {
		return core.Structure{}, [2]int{}, fmt.Errorf("tile: %w", err)
	}
	return tiled, resp.Repeat, nil
}

func (h *HTTPOperations) FindAdsorptionSites(ctx context.Context, s core.Structure) ([][3]float64, error) {
	req := structureRequest{Structure: core.StructureToDocument(s)}
	var resp struct {
		Sites [][3]float64 `json:"sites"`
	}
	if err := h.call(ctx, "adsorption_sites", req, &resp); err != nil {
		return nil, err
	}
	return resp.Sites, nil
}

type structureRequest struct {
	Structure core.Document `json:"structure"`
}

type structureResponse struct {
	Structure core.Document `json:"structure"`
}

// transform covers the one-structure-in, one-structure-out operations.
func (h *HTTPOperations) transform(ctx context.Context, op string, s core.Structure) (core.Structure, error) {
	req := structureRequest{Structure: core.StructureToDocument(s)}
	var resp structureResponse
	if err := h.call(ctx, op, req, &resp); err != nil {
		return core.Structure{}, err
	}
	out, err := core.DocumentToStructure(resp.Structure)
	if err != nil {
		return core.Structure{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (h *HTTPOperations) call(ctx context.Context, op string, in, out any) error {
	if h.BaseURL == "" {
		return fmt.Errorf("geometry %s: endpoint not configured", op)
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("geometry %s: encoding request: %w", op, err)
	}
	url := h.BaseURL + "/v1/" + op
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("geometry %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("geometry %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("geometry %s: status %d: %s", op, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geometry %s: decoding response: %w", op, err)
	}
	return nil
}
