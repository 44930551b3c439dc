package solana

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
)

// fakeRPC answers JSON-RPC calls with canned results keyed by method.
type fakeRPC struct {
	mu      sync.Mutex
	results map[string]string
	calls   map[string]int
}

func newFakeRPC(t *testing.T, results map[string]string) (*fakeRPC, *httptest.Server) {
	t.Helper()
	f := &fakeRPC{results: results, calls: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		method := gjson.GetBytes(body, "method").String()
		id := gjson.GetBytes(body, "id").Raw
		f.mu.Lock()
		f.calls[method]++
		result, ok := f.results[method]
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method not found"}}`, id)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, id, result)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeRPC) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}
