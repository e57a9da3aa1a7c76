package downloader

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/require"

	"comicscrape/cf"
	"comicscrape/config"
)

const challengeBody = `<html><head><title>Just a moment...</title></head>
<body><div id="challenge-form">Checking your browser before accessing</div></body></html>`

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><h1>ok " + r.Header.Get("User-Agent") + "</h1></body></html>"))
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(gzipped(t, "<html><body>compressed</body></html>"))
	})
	mux.HandleFunc("/bad-br", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "br")
		w.Write(truncatedBrotli(t))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/challenge", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(challengeBody))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchHTML(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{UserAgent: "TestBrowser/1.0 Chrome"}, 5*time.Second)

	html, err := client.FetchHTML(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	require.Contains(t, html, "ok TestBrowser/1.0 Chrome")

	html, err = client.FetchHTML(context.Background(), srv.URL+"/gzip")
	require.NoError(t, err)
	require.Contains(t, html, "compressed")
}

func truncatedBrotli(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write([]byte(strings.Repeat("<p>Un colpo perfetto</p>", 200)))
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	return buf.Bytes()[:buf.Len()/2]
}

func TestFetchHTMLCorruptBrotli(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{}, 5*time.Second)

	html, err := client.FetchHTML(context.Background(), srv.URL+"/bad-br")
	require.Error(t, err)
	require.Empty(t, html)
	require.Contains(t, err.Error(), "failed to decompress response")
}

func TestFetchHTMLStatusError(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{}, 5*time.Second)

	_, err := client.FetchHTML(context.Background(), srv.URL+"/broken")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.Contains(t, err.Error(), srv.URL+"/broken")
}

func TestFetchHTMLChallenge(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{}, 5*time.Second)

	_, err := client.FetchHTML(context.Background(), srv.URL+"/challenge")
	chErr, ok := cf.IsChallenge(err)
	require.True(t, ok, "expected a challenge error, got %v", err)
	require.Equal(t, http.StatusForbidden, chErr.StatusCode)
}

func TestFetchHTMLTimeout(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{}, 200*time.Millisecond)

	start := time.Now()
	_, err := client.FetchHTML(context.Background(), srv.URL+"/slow")
	require.Error(t, err)
	require.Less(t, time.Since(start), 3*time.Second, "a single attempt must not retry")
}

func TestFetchCatalog(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{UserAgent: "CatalogBot Chrome"}, 5*time.Second)

	body, err := client.FetchCatalog(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	require.Contains(t, string(body), "ok CatalogBot Chrome")

	body, err = client.FetchCatalog(context.Background(), srv.URL+"/gzip")
	require.NoError(t, err)
	require.Contains(t, string(body), "compressed")
}

func TestFetchCatalogErrors(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{}, 5*time.Second)

	_, err := client.FetchCatalog(context.Background(), srv.URL+"/broken")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

	_, err = client.FetchCatalog(context.Background(), srv.URL+"/challenge")
	_, ok := cf.IsChallenge(err)
	require.True(t, ok, "got %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.FetchCatalog(ctx, srv.URL+"/ok")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRequestExecutorModes(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(cf.BrowserProfile{}, 5*time.Second)

	_, err := NewRequestExecutor("carrier-pigeon", client, cf.BrowserProfile{}, time.Second)
	require.Error(t, err)

	exec, err := NewRequestExecutor("", client, cf.BrowserProfile{}, time.Second)
	require.NoError(t, err)
	require.Equal(t, config.FetchModeHTTP, exec.Mode())

	html, err := exec.FetchHTML(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	require.Contains(t, html, "ok")

	exec, err = NewRequestExecutor(config.FetchModeBrowser, client, cf.BrowserProfile{}, time.Second)
	require.NoError(t, err)

	var visited string
	exec.browserFetch = func(ctx context.Context, url string, profile cf.BrowserProfile, timeout time.Duration) (string, error) {
		visited = url
		return "<html>rendered</html>", nil
	}

	html, err = exec.FetchHTML(context.Background(), srv.URL+"/broken")
	require.NoError(t, err, "browser mode must not go through the HTTP client")
	require.Equal(t, "<html>rendered</html>", html)
	require.Equal(t, srv.URL+"/broken", visited)
}

func TestCoverFileName(t *testing.T) {
	name, err := CoverFileName("742", "https://www.diabolik.it/wp-content/uploads/2024/03/742-cover.jpg?ver=2")
	require.NoError(t, err)
	require.Equal(t, "742_742-cover.jpg", name)

	_, err = CoverFileName("742", "https://www.diabolik.it/")
	require.Error(t, err)
}
