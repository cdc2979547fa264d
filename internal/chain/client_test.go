package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/judgeabook/judge-a-book/internal/config"
	jhttp "github.com/judgeabook/judge-a-book/internal/http"
	"go.uber.org/zap/zaptest"
)

const testKey = "chain-secret"

// fakeChain serves the collection registry and chain API endpoints.
type fakeChain struct {
	collections []string
	assets      []string
	metadata    map[string]string // asset id -> raw JSON body
	failPolicy  int               // non-zero status for the policy listing
	ignorePage  bool              // serve every asset regardless of ?page=

	policyCalls atomic.Int32
	badKeys     atomic.Int32
}

func (f *fakeChain) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/collections", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data []map[string]string `json:"data"`
		}
		for _, id := range f.collections {
			body.Data = append(body.Data, map[string]string{"collection_id": id})
		}
		json.NewEncoder(w).Encode(body)
	})

	r.Route("/api/v0", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("project_id") != testKey {
					f.badKeys.Add(1)
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
			})
		})

		r.Get("/assets/policy/{policy}", func(w http.ResponseWriter, r *http.Request) {
			f.policyCalls.Add(1)
			if f.failPolicy != 0 {
				w.WriteHeader(f.failPolicy)
				return
			}
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if page < 1 {
				page = 1
			}
			start := (page - 1) * pageSize
			end := min(start+pageSize, len(f.assets))
			if f.ignorePage {
				start, end = 0, len(f.assets)
			}
			entries := []map[string]string{}
			for i := start; i < end; i++ {
				entries = append(entries, map[string]string{"asset": f.assets[i], "quantity": "1"})
			}
			json.NewEncoder(w).Encode(entries)
		})

		r.Get("/assets/{asset}", func(w http.ResponseWriter, r *http.Request) {
			body, ok := f.metadata[chi.URLParam(r, "asset")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(body))
		})
	})

	return r
}

func newTestClient(t *testing.T, f *fakeChain) *Client {
	t.Helper()
	server := httptest.NewServer(f.router())
	t.Cleanup(server.Close)

	client := NewClient(config.Endpoints{
		ChainAPIKey:  testKey,
		ChainBaseURL: server.URL + "/api/v0",
		UserAgent:    "judge-test",
		Timeout:      5 * time.Second,
	}, zaptest.NewLogger(t))
	client.collectionsURL = server.URL + "/collections"
	return client
}

func TestClient_ValidateCollection(t *testing.T) {
	client := newTestClient(t, &fakeChain{collections: []string{"abc123", "def456"}})

	tests := []struct {
		id   string
		want bool
	}{
		{"abc123", true},
		{"def456", true},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := client.ValidateCollection(context.Background(), tt.id)
			if err != nil {
				t.Fatalf("ValidateCollection(%q) error: %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("ValidateCollection(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestClient_ValidateCollectionStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(config.Endpoints{ChainBaseURL: server.URL}, zaptest.NewLogger(t))
	client.collectionsURL = server.URL

	_, err := client.ValidateCollection(context.Background(), "abc123")
	var status *jhttp.StatusError
	if !errors.As(err, &status) || status.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
	if err.Error() != "503 Service Unavailable" {
		t.Errorf("Error() = %q, want status text", err.Error())
	}
}

func TestClient_ValidateCollectionMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": "nope"}`))
	}))
	defer server.Close()

	client := NewClient(config.Endpoints{}, zaptest.NewLogger(t))
	client.collectionsURL = server.URL

	if _, err := client.ValidateCollection(context.Background(), "abc123"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_ListAssets(t *testing.T) {
	f := &fakeChain{assets: []string{"a1", "a2", "a3"}}
	client := newTestClient(t, f)

	assets, err := client.ListAssets(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != 3 || assets[0] != "a1" || assets[2] != "a3" {
		t.Errorf("ListAssets() = %v", assets)
	}
	if f.policyCalls.Load() != 1 {
		t.Errorf("policy listing called %d times, want 1", f.policyCalls.Load())
	}
	if f.badKeys.Load() != 0 {
		t.Error("request sent without the project_id header")
	}
}

func TestClient_ListAssetsPaginates(t *testing.T) {
	f := &fakeChain{}
	for i := 0; i < 2*pageSize+7; i++ {
		f.assets = append(f.assets, fmt.Sprintf("asset%03d", i))
	}
	client := newTestClient(t, f)

	assets, err := client.ListAssets(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != len(f.assets) {
		t.Fatalf("got %d assets, want %d", len(assets), len(f.assets))
	}
	if assets[pageSize] != f.assets[pageSize] {
		t.Errorf("assets out of order at page boundary: %q", assets[pageSize])
	}
	if f.policyCalls.Load() != 3 {
		t.Errorf("policy listing called %d times, want 3", f.policyCalls.Load())
	}
}

func TestClient_ListAssetsIgnoresPaging(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		wantCalls int32
	}{
		{name: "longer than a page", total: 150, wantCalls: 1},
		{name: "exactly one page", total: pageSize, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeChain{ignorePage: true}
			for i := 0; i < tt.total; i++ {
				f.assets = append(f.assets, fmt.Sprintf("asset%03d", i))
			}
			client := newTestClient(t, f)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			assets, err := client.ListAssets(ctx, "abc123")
			if err != nil {
				t.Fatalf("ListAssets failed: %v", err)
			}
			if len(assets) != tt.total {
				t.Errorf("got %d assets, want %d", len(assets), tt.total)
			}
			if got := f.policyCalls.Load(); got != tt.wantCalls {
				t.Errorf("policy listing called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClient_ListAssetsStatusError(t *testing.T) {
	client := newTestClient(t, &fakeChain{failPolicy: http.StatusNotFound})

	_, err := client.ListAssets(context.Background(), "abc123")
	var status *jhttp.StatusError
	if !errors.As(err, &status) || status.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestClient_ListAssetsWrongKey(t *testing.T) {
	f := &fakeChain{assets: []string{"a1"}}
	client := newTestClient(t, f)
	client.header = http.Header{"project_id": {"wrong"}}

	if _, err := client.ListAssets(context.Background(), "abc123"); err == nil {
		t.Fatal("expected error with a rejected key")
	}
}

func TestClient_GetAssetMetadata(t *testing.T) {
	f := &fakeChain{metadata: map[string]string{
		"good":      `{"asset":"good","onchain_metadata":{"image":"ipfs://QmLow","files":[{"name":"High-Res Cover Image","src":"ipfs://QmHigh"}]}}`,
		"chunked":   `{"asset":"chunked","onchain_metadata":{"image":["ipfs://Qm","Low"],"files":[]}}`,
		"empty":     `{"asset":"empty","onchain_metadata":null}`,
		"malformed": `{"asset":"malformed","onchain_metadata":{"image":`,
		"wrongtype": `{"asset":"wrongtype","onchain_metadata":{"image":7}}`,
	}}
	client := newTestClient(t, f)

	tests := []struct {
		asset     string
		wantOK    bool
		wantImage string
	}{
		{"good", true, "ipfs://QmLow"},
		{"chunked", true, "ipfs://QmLow"},
		{"empty", false, ""},
		{"malformed", false, ""},
		{"wrongtype", false, ""},
		{"missing", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.asset, func(t *testing.T) {
			meta, ok := client.GetAssetMetadata(context.Background(), tt.asset)
			if ok != tt.wantOK {
				t.Fatalf("GetAssetMetadata(%q) ok = %v, want %v", tt.asset, ok, tt.wantOK)
			}
			if ok && meta.Image != tt.wantImage {
				t.Errorf("Image = %q, want %q", meta.Image, tt.wantImage)
			}
		})
	}
}

func TestClient_GetAssetMetadataUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := NewClient(config.Endpoints{ChainBaseURL: base, Timeout: time.Second}, zaptest.NewLogger(t))
	if _, ok := client.GetAssetMetadata(context.Background(), "a1"); ok {
		t.Fatal("expected metadata to be unavailable")
	}
}
