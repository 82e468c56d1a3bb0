package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/HydroPal/internal/client/storage"
)

func newShellServer(t *testing.T) *httptest.Server {
	t.Helper()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	total := 0.0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/water", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Amount float64 }
		_ = json.NewDecoder(r.Body).Decode(&body)
		total += body.Amount
		write(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"amount": body.Amount}})
	})
	mux.HandleFunc("GET /api/auth/water/today", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"success": true, "total": total})
	})
	mux.HandleFunc("DELETE /api/auth/water/today", func(w http.ResponseWriter, r *http.Request) {
		total = 0
		write(w, http.StatusOK, map[string]any{"success": true, "deletedCount": 2})
	})
	mux.HandleFunc("GET /api/auth/water/monthly", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"success": true, "data": make([]float64, 12)})
	})
	mux.HandleFunc("DELETE /api/data/{id}", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusNotFound, map[string]any{"success": false, "message": "No tracking entry found or not authorized"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRepl(t *testing.T) {
	srv := newShellServer(t)
	api := storage.NewAPIClient(srv.URL, srv.Client())
	api.Token = "tok"

	input := strings.Join([]string{
		"water 250",
		"water 500",
		"today",
		"clear",
		"today",
		"water lots",
		"ranking ten",
		"monthly",
		"delete nope",
		"dance",
		"",
		"exit",
		"today",
	}, "\n")
	var out bytes.Buffer

	repl(context.Background(), api, strings.NewReader(input), &out)

	got := out.String()
	for _, want := range []string{
		"Logged 250 ml",
		"Today: 750 ml",
		"Deleted 2 water logs",
		"Today: 0 ml",
		`Error: invalid amount "lots"`,
		"Error: usage: ranking [n]",
		"Jan 0 ml",
		"Dec 0 ml",
		"No tracking entry found or not authorized",
		`unknown command "dance"`,
		"Bye",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "Today:") != 2 {
		t.Errorf("commands after exit must not run:\n%s", got)
	}
}

func TestRunCommand_Usage(t *testing.T) {
	api := storage.NewAPIClient("http://127.0.0.1:0", nil)
	for _, args := range [][]string{{"water"}, {"add", "water"}, {"delete"}} {
		var out bytes.Buffer
		err := runCommand(context.Background(), api, args, &out)
		if err == nil || !strings.HasPrefix(err.Error(), "usage:") {
			t.Errorf("runCommand(%v) error = %v; want usage error", args, err)
		}
	}

	var out bytes.Buffer
	if err := runCommand(context.Background(), api, []string{"help"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Available commands") {
		t.Errorf("help output = %q", out.String())
	}
}
