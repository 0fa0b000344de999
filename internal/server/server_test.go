package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/dispatch"
	"github.com/pddkit/pddserve/internal/executor"
	"github.com/pddkit/pddserve/internal/registry"
	"github.com/pddkit/pddserve/internal/workspace"
)

// recordingDispatcher captures execute requests.
type recordingDispatcher struct {
	requests []dispatch.Request
	response dispatch.Response
	panicMsg string
}

func (d *recordingDispatcher) Commands() []registry.CommandSpec { return registry.List() }

func (d *recordingDispatcher) Execute(_ context.Context, req dispatch.Request) dispatch.Response {
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	d.requests = append(d.requests, req)
	return d.response
}

type countingExecutor struct{ calls int }

func (e *countingExecutor) Execute(context.Context, executor.ExecuteRequest) executor.ExecuteResponse {
	e.calls++
	return executor.ExecuteResponse{Status: executor.StatusCompleted, Stdout: "done"}
}

type fixture struct {
	srv  *httptest.Server
	root string
}

func newFixture(t *testing.T, d Dispatcher, staticDir string) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig().Server
	cfg.StaticDir = staticDir

	s := NewServer(cfg, d, workspace.New(root, nil))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &fixture{srv: ts, root: root}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestRoot(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	resp, body := f.do(t, http.MethodGet, "/api", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"message":"PDD Backend API is running","version":"1.0.0"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestCommands(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	resp, body := f.do(t, http.MethodGet, "/commands", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got commandsResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 16, got.Total)
	require.Len(t, got.Commands, 16)
	assert.Equal(t, "sync", got.Commands[0].Name)
	assert.Equal(t, "verify", got.Commands[15].Name)
}

func TestExecutePassesRequest(t *testing.T) {
	d := &recordingDispatcher{response: dispatch.Success("ok")}
	f := newFixture(t, d, "")

	resp, body := f.do(t, http.MethodPost, "/execute",
		`{"command":"generate","args":{"--template":"t1","-e":["A=1","B=2"],"--force":null},"prompt":"p","basename":"b"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"output":"ok","success":true,"error":null}`, string(body))

	require.Len(t, d.requests, 1)
	req := d.requests[0]
	assert.Equal(t, "generate", req.Command)
	assert.Equal(t, "p", req.Prompt)
	assert.Equal(t, "b", req.Basename)
	assert.Equal(t, []string{"--template", "t1", "-e", "A=1", "-e", "B=2", "--force"}, req.Args.Expand())
}

func TestExecuteNullOptionalFields(t *testing.T) {
	d := &recordingDispatcher{response: dispatch.Success("")}
	f := newFixture(t, d, "")

	resp, _ := f.do(t, http.MethodPost, "/execute", `{"command":"test","args":null,"prompt":null,"basename":null}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, d.requests, 1)
	assert.Equal(t, dispatch.Request{Command: "test"}, d.requests[0])
}

func TestExecuteMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"command":`},
		{"empty body", ``},
		{"missing command", `{"basename":"x"}`},
		{"command wrong type", `{"command":5}`},
		{"object arg", `{"command":"sync","args":{"-x":{"a":1}}}`},
		{"args not object", `{"command":"sync","args":["-x"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDispatcher{}
			f := newFixture(t, d, "")

			resp, body := f.do(t, http.MethodPost, "/execute", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var got errorResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.NotEmpty(t, got.Detail)
			assert.Empty(t, d.requests)
		})
	}
}

func TestExecuteUnknownCommandNeverRuns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Root = t.TempDir()
	exec := &countingExecutor{}
	svc := dispatch.NewService(executor.NewRunner(cfg, exec), dispatch.NewAssembler(cfg.Server.Root, cfg.Prompt), nil)
	f := newFixture(t, svc, "")

	resp, body := f.do(t, http.MethodPost, "/execute", `{"command":"deploy"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dispatch.Response
	require.NoError(t, json.Unmarshal(body, &got))
	assert.False(t, got.Success)
	assert.Equal(t, "Unknown command: deploy. Available commands: "+registry.NamesList(), got.ErrorMessage())
	assert.Zero(t, exec.calls)

	_, body = f.do(t, http.MethodPost, "/execute", `{"command":"test","basename":"foo"}`)
	assert.JSONEq(t, `{"output":"done","success":true,"error":null}`, string(body))
	assert.Equal(t, 1, exec.calls)
}

func TestFilesRoundTrip(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	resp, body := f.do(t, http.MethodPost, "/files", `{"path":"prompts/a.prompt","content":"hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"output":"File saved successfully: prompts/a.prompt","success":true,"error":null}`, string(body))

	data, err := os.ReadFile(filepath.Join(f.root, "prompts", "a.prompt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	resp, body = f.do(t, http.MethodGet, "/files?path=prompts/a.prompt", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"content":"hello","success":true,"error":null}`, string(body))
}

func TestGetFileMissing(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	resp, body := f.do(t, http.MethodGet, "/files?path=missing.txt", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"content":"","success":false,"error":"File not found: missing.txt"}`, string(body))
}

func TestFilesMalformed(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	resp, _ := f.do(t, http.MethodGet, "/files", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/files", `{"path":"a.txt"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/files", `{"content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/files", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStaticBundle(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>pdd</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	f := newFixture(t, &recordingDispatcher{}, dist)

	resp, body := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>pdd</html>", string(body))

	resp, body = f.do(t, http.MethodGet, "/assets/app.js", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log(1)", string(body))

	// API routes win over the bundle.
	_, body = f.do(t, http.MethodGet, "/api", "")
	assert.Contains(t, string(body), "PDD Backend API is running")
}

func TestStaticBundleMissing(t *testing.T) {
	var logs bytes.Buffer
	old := clog.ReplaceGlobal(clog.TestLogger(&logs))
	t.Cleanup(func() { clog.ReplaceGlobal(old) })

	f := newFixture(t, &recordingDispatcher{}, filepath.Join(t.TempDir(), "dist"))

	resp, _ := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, logs.String(), "Frontend will not be served")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/execute", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestCORSExplicitOrigins(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.CORSOrigins = []string{"https://app.example.com"}
	s := NewServer(cfg, &recordingDispatcher{}, workspace.New(t.TempDir(), nil))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example.com", "https://app.example.com"},
		{"https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.URL+"/api", nil)
			require.NoError(t, err)
			req.Header.Set("Origin", tt.origin)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.want, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSWildcardEchoesOrigin(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://127.0.0.1:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "http://127.0.0.1:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.NotEqual(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "client-id-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "client-id-1", resp.Header.Get("X-Request-Id"))
}

func TestPanicRecovered(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{panicMsg: "boom"}, "")

	resp, body := f.do(t, http.MethodPost, "/execute", `{"command":"sync"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"output":"","success":false,"error":"Internal server error: boom"}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, &recordingDispatcher{}, "")
	f.do(t, http.MethodGet, "/api", "")

	resp, body := f.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `pddserve_http_requests_total{method="GET",route="/api",status="200"}`)
}

func TestStartStop(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	s := NewServer(cfg, &recordingDispatcher{}, workspace.New(t.TempDir(), nil))

	assert.Empty(t, s.ListenAddr())
	assert.NoError(t, s.Wait(), "Wait before Start returns immediately")
	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "second Start must fail")

	addr := s.ListenAddr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/api")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Wait())
	require.NoError(t, s.Stop(ctx), "Stop on stopped server is a no-op")
}
