package ipfs

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/judgeabook/judge-a-book/internal/config"
	jhttp "github.com/judgeabook/judge-a-book/internal/http"
	"go.uber.org/zap/zaptest"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

type fakeGateway struct {
	blobs   map[string][]byte
	lastKey atomic.Value
}

func (f *fakeGateway) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/ipfs/*", func(w http.ResponseWriter, r *http.Request) {
		f.lastKey.Store(r.Header.Get("project_id"))
		blob, ok := f.blobs[chi.URLParam(r, "*")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(blob)
	})
	return r
}

func newTestClient(t *testing.T, f *fakeGateway, key string, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	endpoints := config.Endpoints{
		AssetAPIKey:  key,
		AssetBaseURL: srv.URL + "/ipfs",
		UserAgent:    "judge-a-book/test",
		Timeout:      5 * time.Second,
	}
	return NewClient(endpoints, opts, zaptest.NewLogger(t))
}

func TestClient_DownloadCover(t *testing.T) {
	blob := testPNG(t, 4, 4)
	f := &fakeGateway{blobs: map[string][]byte{"QmX": blob}}
	client := newTestClient(t, f, "", Options{})

	dir := t.TempDir()
	prefix := filepath.Join(dir, "abc123-high-")

	path, err := client.DownloadCover(context.Background(), "QmX", prefix)
	if err != nil {
		t.Fatalf("DownloadCover: %v", err)
	}
	if want := prefix + "QmX.png"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Error("written file does not match downloaded bytes")
	}

	if key := f.lastKey.Load().(string); key != "" {
		t.Errorf("project_id header sent without a key: %q", key)
	}
}

func TestClient_DownloadCoverNotAnImage(t *testing.T) {
	blob := []byte("not an image, written verbatim")
	f := &fakeGateway{blobs: map[string][]byte{"QmText": blob}}
	client := newTestClient(t, f, "secret", Options{MaxSize: 10})

	prefix := filepath.Join(t.TempDir(), "c-low-")
	path, err := client.DownloadCover(context.Background(), "QmText", prefix)
	if err != nil {
		t.Fatalf("DownloadCover: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("file = %q, want %q", got, blob)
	}

	if key := f.lastKey.Load().(string); key != "secret" {
		t.Errorf("project_id header = %q, want %q", key, "secret")
	}
}

func TestClient_DownloadCoverOverwrites(t *testing.T) {
	blob := []byte("fresh")
	f := &fakeGateway{blobs: map[string][]byte{"QmX": blob}}
	client := newTestClient(t, f, "", Options{})

	prefix := filepath.Join(t.TempDir(), "c-high-")
	if err := os.WriteFile(prefix+"QmX.png", []byte("stale contents that are longer"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	path, err := client.DownloadCover(context.Background(), "QmX", prefix)
	if err != nil {
		t.Fatalf("DownloadCover: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "fresh" {
		t.Errorf("file = %q, want %q", got, "fresh")
	}
}

func TestClient_DownloadCoverResize(t *testing.T) {
	f := &fakeGateway{blobs: map[string][]byte{"QmBig": testPNG(t, 200, 100)}}
	client := newTestClient(t, f, "", Options{MaxSize: 50})

	path, err := client.DownloadCover(context.Background(), "QmBig", filepath.Join(t.TempDir(), "c-high-"))
	if err != nil {
		t.Fatalf("DownloadCover: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if format != "png" || cfg.Width != 50 || cfg.Height != 25 {
		t.Errorf("got %s %dx%d, want png 50x25", format, cfg.Width, cfg.Height)
	}
}

func TestClient_DownloadCoverNotFound(t *testing.T) {
	f := &fakeGateway{blobs: map[string][]byte{}}
	client := newTestClient(t, f, "", Options{})

	prefix := filepath.Join(t.TempDir(), "c-high-")
	_, err := client.DownloadCover(context.Background(), "QmMissing", prefix)
	if err == nil {
		t.Fatal("DownloadCover succeeded, want error")
	}

	var statusErr *jhttp.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("err = %v, want 404 status error", err)
	}
	if _, statErr := os.Stat(prefix + "QmMissing.png"); !os.IsNotExist(statErr) {
		t.Errorf("file exists after failed download: %v", statErr)
	}
}

func TestClient_DownloadCoverMissingDir(t *testing.T) {
	f := &fakeGateway{blobs: map[string][]byte{"QmX": []byte("x")}}
	client := newTestClient(t, f, "", Options{})

	prefix := filepath.Join(t.TempDir(), "missing", "c-high-")
	if _, err := client.DownloadCover(context.Background(), "QmX", prefix); err == nil {
		t.Fatal("DownloadCover succeeded, want write error")
	}
}

func TestClient_DownloadCoverReportsBytes(t *testing.T) {
	blob := bytes.Repeat([]byte("a"), 64*1024)
	f := &fakeGateway{blobs: map[string][]byte{"QmX": blob}}

	var received atomic.Int64
	client := newTestClient(t, f, "", Options{OnBytes: func(n int64) { received.Add(n) }})

	if _, err := client.DownloadCover(context.Background(), "QmX", filepath.Join(t.TempDir(), "c-high-")); err != nil {
		t.Fatalf("DownloadCover: %v", err)
	}
	if got := received.Load(); got != int64(len(blob)) {
		t.Errorf("bytes reported = %d, want %d", got, len(blob))
	}
}

func TestClient_DownloadCoverPathReference(t *testing.T) {
	blob := []byte("cover inside a directory")
	f := &fakeGateway{blobs: map[string][]byte{"QmDir/cover.png": blob}}
	client := newTestClient(t, f, "", Options{})

	prefix := filepath.Join(t.TempDir(), "c-high-")
	if err := os.MkdirAll(prefix+"QmDir", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	path, err := client.DownloadCover(context.Background(), "QmDir/cover.png", prefix)
	if err != nil {
		t.Fatalf("DownloadCover: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("file = %q, want %q", got, blob)
	}
}

func TestClient_CoverURL(t *testing.T) {
	client := NewClient(config.Endpoints{AssetBaseURL: "https://ipfs.io/ipfs"}, Options{}, nil)

	tests := []struct {
		cid  string
		want string
	}{
		{cid: "QmX", want: "https://ipfs.io/ipfs/QmX"},
		{cid: "QmDir/cover.png", want: "https://ipfs.io/ipfs/QmDir/cover.png"},
		{cid: "QmDir/my cover.png", want: "https://ipfs.io/ipfs/QmDir/my%20cover.png"},
		{cid: "QmDir/a?b", want: "https://ipfs.io/ipfs/QmDir/a%3Fb"},
	}

	for _, tt := range tests {
		t.Run(tt.cid, func(t *testing.T) {
			if got := client.coverURL(tt.cid); got != tt.want {
				t.Errorf("coverURL(%q) = %q, want %q", tt.cid, got, tt.want)
			}
		})
	}
}
