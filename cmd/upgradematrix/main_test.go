package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunWritesMatrixToStdout(t *testing.T) {
	reports := map[string]string{
		"/simbot/report/one/data.csv": "profile,dps\nArthas,100\nArthas/228843//c//strength/,115\nArthas/228843//c//zeal/,90\n",
		"/simbot/report/two/data.csv": "profile,dps\nJaina,200\nJaina/228843//c//agi/,220\n",
	}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := reports[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	defaultTransport := http.DefaultTransport
	http.DefaultTransport = srv.Client().Transport
	t.Cleanup(func() { http.DefaultTransport = defaultTransport })

	host := strings.TrimPrefix(srv.URL, "https://")
	input := fmt.Sprintf(`<a href="https://%[1]s/simbot/report/one">1</a> <a href="https://%[1]s/simbot/report/missing">2</a> <a href="https://%[1]s/simbot/report/two">3</a>`, host)

	var stdout bytes.Buffer
	err := run([]string{"-host", host, "-timeout", "2s"}, strings.NewReader(input), &stdout)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	want := "Person,agi,strength,zeal\nArthas,,15,-10\nJaina,20,,\n"
	if got := stdout.String(); got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestRunWithoutLinksWritesHeaderOnly(t *testing.T) {
	var stdout bytes.Buffer
	if err := run(nil, strings.NewReader("no links"), &stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout.String() != "Person\n" {
		t.Fatalf("stdout = %q, want header only", stdout.String())
	}
}

func TestRunVersion(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"-version"}, strings.NewReader(""), &stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout.String() != "upgradematrix version dev\n" {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestRunRejectsZeroConcurrency(t *testing.T) {
	if err := run([]string{"-concurrency", "0"}, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
}
