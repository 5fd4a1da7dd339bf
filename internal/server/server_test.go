package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/ptframe/internal/logging"
	"honnef.co/go/ptframe/internal/store"
)

const straightRig = `
curve:
  kind: line
  points: [[0, 0, 0], [0, 10, 0]]
samples: [0, 0.5, 1]
restLength: 10
`

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(st, logging.NewNop(), prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeRecord(t *testing.T, resp *http.Response) store.Record {
	t.Helper()
	var rec store.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	resp := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEvaluate(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	resp := post(t, srv.URL+"/rigs/arm/evaluate", "application/yaml", straightRig)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get("X-Ptframe-Cache"))
	rec := decodeRecord(t, resp)

	ev := rec.Evaluation
	assert.Equal(t, "arm", ev.Rig)
	assert.Equal(t, "radians", ev.Units)
	require.Len(t, ev.Samples, 3)
	for i, y := range []float64{0, 5, 10} {
		s := ev.Samples[i]
		assert.InDelta(t, y, s.Translate[1], 1e-6, "sample %d", i)
		assert.InDelta(t, 0, s.Rotate[0], 1e-9, "sample %d", i)
		assert.InDelta(t, 0, s.Rotate[1], 1e-9, "sample %d", i)
		assert.InDelta(t, 0, s.Rotate[2], 1e-9, "sample %d", i)
		assert.Equal(t, 1.0, s.Scale, "sample %d", i)
	}
	assert.Len(t, rec.Fingerprints, 3)
	assert.False(t, rec.UpdatedAt.IsZero())

	got := decodeRecord(t, get(t, srv.URL+"/rigs/arm/result"))
	assert.Equal(t, rec.Evaluation, got.Evaluation)
	assert.Equal(t, rec.Fingerprints, got.Fingerprints)
}

func TestEvaluateJSON(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	body := `{
		"curve": {"kind": "line", "points": [[0, 0, 0], [0, 10, 0]]},
		"sampleCount": 2,
		"restLength": 40,
		"scale": {"constant": 1}
	}`
	resp := post(t, srv.URL+"/rigs/leg/evaluate?degrees=true", "application/json; charset=utf-8", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ev := decodeRecord(t, resp).Evaluation

	assert.Equal(t, "degrees", ev.Units)
	require.Len(t, ev.Samples, 2)
	// sqrt(40/10) = 2
	assert.InDelta(t, 2, ev.Samples[0].Scale, 1e-12)
	assert.InDelta(t, 2, ev.Samples[1].Scale, 1e-12)
}

func TestEvaluateCached(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	first := post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig)
	require.Equal(t, http.StatusOK, first.StatusCode)
	want := decodeRecord(t, first)

	second := post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "hit", second.Header.Get("X-Ptframe-Cache"))
	assert.Equal(t, want.Evaluation, decodeRecord(t, second).Evaluation)

	// Different units need a new evaluation.
	third := post(t, srv.URL+"/rigs/arm/evaluate?degrees=1", "", straightRig)
	require.Equal(t, http.StatusOK, third.StatusCode)
	assert.Equal(t, "miss", third.Header.Get("X-Ptframe-Cache"))

	// So do changed inputs.
	fourth := post(t, srv.URL+"/rigs/arm/evaluate?degrees=1", "", strings.Replace(straightRig, "restLength: 10", "restLength: 20", 1))
	require.Equal(t, http.StatusOK, fourth.StatusCode)
	assert.Equal(t, "miss", fourth.Header.Get("X-Ptframe-Cache"))
}

func TestEvaluateFailureKeepsResult(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	resp := post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	want := decodeRecord(t, resp)

	resp = post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig+"rotateOrder: abc\n")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "invalid rig")

	got := decodeRecord(t, get(t, srv.URL+"/rigs/arm/result"))
	assert.Equal(t, want.Evaluation, got.Evaluation)
	assert.Equal(t, want.Fingerprints, got.Fingerprints)
}

func TestEvaluateBadRequest(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	tests := []struct {
		name string
		url  string
		body string
	}{
		{"bad degrees", "/rigs/arm/evaluate?degrees=maybe", straightRig},
		{"bad yaml", "/rigs/arm/evaluate", "curve: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.url, "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp := get(t, srv.URL+"/rigs/arm/result")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAndDelete(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	var list map[string][]string
	require.NoError(t, json.NewDecoder(get(t, srv.URL+"/rigs").Body).Decode(&list))
	assert.Empty(t, list["rigs"])

	for _, name := range []string{"leg", "arm"} {
		resp := post(t, srv.URL+"/rigs/"+name+"/evaluate", "", straightRig)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.NoError(t, json.NewDecoder(get(t, srv.URL+"/rigs").Body).Decode(&list))
	assert.Equal(t, []string{"arm", "leg"}, list["rigs"])

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/rigs/leg/result", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/rigs/leg/result").StatusCode)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig)
	post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig)
	post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig+"rotateOrder: abc\n")

	resp := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `ptframe_evaluations_total{outcome="success"} 1`)
	assert.Contains(t, text, `ptframe_evaluations_total{outcome="cached"} 1`)
	assert.Contains(t, text, `ptframe_evaluations_total{outcome="failure"} 1`)
	assert.Contains(t, text, "ptframe_samples_total 3")
	assert.Contains(t, text, "ptframe_evaluation_duration_seconds_count 2")
}

func TestRedisBackedServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	st := store.NewRedisFromClient(client)
	t.Cleanup(func() { st.Close() })
	srv := newTestServer(t, st)

	resp := post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	want := decodeRecord(t, resp)

	resp = post(t, srv.URL+"/rigs/arm/evaluate", "", straightRig)
	assert.Equal(t, "hit", resp.Header.Get("X-Ptframe-Cache"))

	got := decodeRecord(t, get(t, srv.URL+"/rigs/arm/result"))
	assert.Equal(t, want.Evaluation, got.Evaluation)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
}

func TestEvaluateConcurrent(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	const n = 8
	caches := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(srv.URL+"/rigs/arm/evaluate", "", strings.NewReader(straightRig))
			if err != nil {
				errs[i] = err
				return
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)
			caches[i] = resp.Header.Get("X-Ptframe-Cache")
		}()
	}
	wg.Wait()

	misses := 0
	for i := range n {
		require.NoError(t, errs[i])
		switch caches[i] {
		case "miss":
			misses++
		case "hit":
		default:
			t.Errorf("request %d: unexpected cache header %q", i, caches[i])
		}
	}
	assert.Equal(t, 1, misses)
}

func TestWriteJSONLogsEncodeErrors(t *testing.T) {
	var logs bytes.Buffer
	s := &Server{Logger: logging.NewWriter(&logs, slog.LevelInfo)}

	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, map[string]any{"ch": make(chan int)})
	assert.Contains(t, logs.String(), "failed to encode response")
}
