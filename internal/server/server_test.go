package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/tracklayout/pkg/cache"
	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
	"github.com/matzehuels/tracklayout/pkg/pipeline"
	"github.com/matzehuels/tracklayout/pkg/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	store := session.NewCacheStore(fc, nil, session.DefaultTTL)
	mgr := session.NewManager(store, mode.Options{})
	runner := pipeline.NewRunner(nil, nil, nil)

	srv := New(runner, mgr, Options{}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func scenarioItems() []layout.Item {
	return []layout.Item{
		{ID: "cnv1", Kind: layout.KindInterval, IdealStart: 0, IdealStop: 10},
		{ID: "cnv2", Kind: layout.KindInterval, IdealStart: 5, IdealStop: 15},
		{ID: "bnd1", IdealX: 100, Weight: 1},
		{ID: "bnd2", IdealX: 102, Weight: 3},
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	h := decodeBody[HealthResponse](t, resp)
	if h.Status != "ok" || h.Build.Version == "" {
		t.Errorf("health = %+v", h)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodPost, "/v1/layout", LayoutRequest{CanvasWidth: 500, Items: scenarioItems()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	res := decodeBody[layout.Result](t, resp)
	if res.Rows != 2 || len(res.Placements) != 4 {
		t.Errorf("rows = %d, placements = %d, want 2 and 4", res.Rows, len(res.Placements))
	}
	p, ok := res.Lookup("bnd1")
	if !ok {
		t.Fatal("bnd1 missing")
	}
	q, _ := res.Lookup("bnd2")
	if q.Left() < p.Right()-1e-9 {
		t.Errorf("bnd1 [%v,%v] overlaps bnd2 [%v,%v]", p.Left(), p.Right(), q.Left(), q.Right())
	}
}

func TestLayoutSVG(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodPost, "/v1/layout?format=svg", LayoutRequest{CanvasWidth: 500, Items: scenarioItems()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   errs.Code
	}{
		{"malformed body", "/v1/layout", "{not json", http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"unknown field", "/v1/layout", `{"canvas_width":10,"extra":1}`, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"bad canvas", "/v1/layout", LayoutRequest{CanvasWidth: -5}, http.StatusBadRequest, errs.ErrCodeInvalidCanvas},
		{"bad format", "/v1/layout?format=pdf", LayoutRequest{CanvasWidth: 10}, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"missing session", "/v1/layout", LayoutRequest{SessionID: "nope", CanvasWidth: 10}, http.StatusNotFound, errs.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeBody[ErrorResponse](t, resp); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/v1/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	id := decodeBody[SessionResponse](t, resp).ID
	if id == "" {
		t.Fatal("empty session id")
	}
	base := "/v1/sessions/" + id

	// Expand bnd2, then spread it.
	resp = do(t, ts, http.MethodPost, base+"/items/bnd2/expand?weight=3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expand status = %d, want 200", resp.StatusCode)
	}
	resp = do(t, ts, http.MethodPost, base+"/items/bnd2/spread?weight=3", nil)
	tr := decodeBody[TransitionResponse](t, resp)
	if tr.Mode != mode.SampleSpread || !tr.Pinned {
		t.Errorf("after spread = %+v, want pinned spread", tr)
	}

	// A single sample cannot be spread.
	do(t, ts, http.MethodPost, base+"/items/bnd1/expand", nil)
	resp = do(t, ts, http.MethodPost, base+"/items/bnd1/spread?weight=1", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("spread weight 1 status = %d, want 400", resp.StatusCode)
	}
	if got := decodeBody[ErrorResponse](t, resp); got.Code != errs.ErrCodeInvalidTransition {
		t.Errorf("code = %q, want %q", got.Code, errs.ErrCodeInvalidTransition)
	}

	// Modes survive into layout passes run in the session.
	resp = do(t, ts, http.MethodPost, "/v1/layout", LayoutRequest{SessionID: id, CanvasWidth: 500, Items: scenarioItems()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layout status = %d, want 200", resp.StatusCode)
	}
	res := decodeBody[layout.Result](t, resp)
	p, _ := res.Lookup("bnd2")
	if p.Mode != mode.SampleSpread || !p.Pinned {
		t.Errorf("bnd2 = %v pinned=%v, want pinned spread", p.Mode, p.Pinned)
	}

	resp = do(t, ts, http.MethodGet, base+"/modes", nil)
	modes := decodeBody[SessionResponse](t, resp).Modes
	if st := modes["bnd1"]; st.Mode != mode.Expanded || !st.Pinned {
		t.Errorf("bnd1 state = %+v, want pinned expanded", st)
	}

	resp = do(t, ts, http.MethodPost, base+"/reset", nil)
	if got := decodeBody[SessionResponse](t, resp).Modes; len(got) != 0 {
		t.Errorf("modes after reset = %v, want empty", got)
	}

	resp = do(t, ts, http.MethodDelete, base, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	resp = do(t, ts, http.MethodGet, base+"/modes", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("modes after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestEventErrors(t *testing.T) {
	ts := newTestServer(t)
	id := decodeBody[SessionResponse](t, do(t, ts, http.MethodPost, "/v1/sessions", nil)).ID
	base := "/v1/sessions/" + id

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown event", base + "/items/a/explode", http.StatusBadRequest},
		{"bad weight", base + "/items/a/expand?weight=zero", http.StatusBadRequest},
		{"not applicable", base + "/items/a/collapse", http.StatusBadRequest},
		{"unknown session", "/v1/sessions/missing/items/a/expand", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, tt.path, nil)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
				t.Errorf("Content-Type = %q, want json", resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errs.New(errs.ErrCodeInvalidItem, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeNotFound, "x"), http.StatusNotFound},
		{session.ErrNotFound, http.StatusNotFound},
		{errs.New(errs.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{errs.New(errs.ErrCodeBoundsExceeded, "x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := statusFor(tt.err); got != tt.status {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}
