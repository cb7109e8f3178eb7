package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRecorderFor(t *testing.T, h http.Handler, target string) int {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w.Code
}
