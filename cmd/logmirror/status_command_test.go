package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"logmirror/internal/api"
)

func newStatusServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, r *http.Request, body any) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, api.DaemonStatus{
			Running:       true,
			PID:           4242,
			TargetDir:     "/srv/mirror",
			MaxHistorical: 3,
			InFlight:      1,
			Checks: []api.CheckResult{
				{Name: "Target directory", Passed: true, Required: true, Detail: "/srv/mirror"},
				{Name: "Free space", Passed: false, Detail: "512 MiB available"},
			},
		})
	})
	mux.HandleFunc("/api/instances", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, api.InstanceListResponse{Instances: []api.InstanceStatus{
			{Instance: "db1", Phase: "tailing", ActiveFile: "error/log.7", BytesWritten: 2048, FilesDownloaded: 6},
			{Instance: "db2", Phase: "tailing", FailureStreak: 12, Stalled: true},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStatusCommandRendersDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	srv := newStatusServer(t, "")

	out, _, err := runCLI(t, []string{"status", "--bind", srv.URL}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "running (pid 4242)")
	requireContains(t, out, "1 of 3 slots in use")
	requireContains(t, out, "[WARN] 512 MiB available")
	requireContains(t, out, "error/log.7")
	requireContains(t, out, "tailing (stalled)")
}

func TestStatusCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	srv := newStatusServer(t, "")

	out, _, err := runCLI(t, []string{"status", "--bind", srv.URL, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var snapshot statusSnapshot
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !snapshot.Daemon.Running || len(snapshot.Instances) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestStatusCommandSendsToken(t *testing.T) {
	env := setupCLITestEnv(t)
	srv := newStatusServer(t, "s3cret")

	_, _, err := runCLI(t, []string{"status", "--bind", srv.URL}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "status.token") {
		t.Fatalf("expected token hint, got %v", err)
	}

	env.cfg.Status.Token = "s3cret"
	writeTestConfig(t, env.configPath, env.cfg)
	out, _, err := runCLI(t, []string{"status", "--bind", srv.URL}, env.configPath)
	if err != nil {
		t.Fatalf("status with token: %v", err)
	}
	requireContains(t, out, "running")
}

func TestStatusCommandDaemonNotRunning(t *testing.T) {
	env := setupCLITestEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	out, _, err := runCLI(t, []string{"status", "--bind", addr}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "not running")
}
