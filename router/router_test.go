// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/tictac/store"
	"github.com/danielhkuo/tictac/testutil"
)

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()
	s := store.New(testutil.SetupTestDB(t), nil)
	t.Cleanup(func() { s.Close() })
	return NewRouter(s, testutil.GetTestConfig())
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "tictac API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux := newTestRouter(t)

	// Handlers may answer 400 or 404 for empty input; the route just has to match
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/rooms"},
		{"GET", "/rooms/ABC234"},
		{"POST", "/rooms/ABC234/join"},
		{"PATCH", "/rooms/ABC234"},
		{"GET", "/rooms/ABC234/live"},
		{"GET", "/stats"},
		{"POST", "/stats"},
		{"DELETE", "/stats"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"PUT to room", "PUT", "/rooms/ABC234", http.StatusMethodNotAllowed},
		{"GET join", "GET", "/rooms/ABC234/join", http.StatusMethodNotAllowed},
		{"PUT stats", "PUT", "/stats", http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/nope", http.StatusNotFound},
		{"missing room", "GET", "/rooms/ABC234", http.StatusNotFound},
		{"live on missing room", "GET", "/rooms/ABC234/live", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db, nil)
	defer s.Close()
	mux := NewRouter(s, testutil.GetTestConfig())

	code := testutil.CreateTestRoom(t, db, 3, "host")

	req := httptest.NewRequest("GET", "/rooms/"+code, nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for existing room, got %d. Body: %s", w.Code, w.Body.String())
	}
}
