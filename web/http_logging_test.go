// ABOUTME: Tests for the request logging middleware: line format, request ids and quiet monitoring paths.
// ABOUTME: Captures the standard logger output for the duration of each test.
package web

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRequestLogLine(t *testing.T) {
	buf := captureLog(t)
	srv := newTestServer(t)

	rec := get(t, srv, "/api/summary?topk=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	line := buf.String()
	for _, want := range []string{
		"web request id=",
		"method=GET",
		"path=/api/summary",
		`query="topk=3"`,
		"status=200",
		"bytes=" + strconv.Itoa(rec.Body.Len()),
	} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "id= ") {
		t.Error("request id is empty")
	}
}

func TestRequestLogSkipsHealthyMonitoring(t *testing.T) {
	buf := captureLog(t)
	srv := newTestServer(t)

	get(t, srv, "/health")
	get(t, srv, "/metrics")
	if strings.Contains(buf.String(), "web request") {
		t.Errorf("monitoring requests were logged: %q", buf.String())
	}

	get(t, srv, "/?report=missing")
	if !strings.Contains(buf.String(), "status=404") {
		t.Errorf("failed request not logged: %q", buf.String())
	}
}
