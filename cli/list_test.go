package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"talklens/client"
	"talklens/config"
)

func TestStatusCmdOnlyFetchesArtifactDescriptors(t *testing.T) {
	var mu sync.Mutex
	var paths []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"s1","title":"Standup","session_status":"completed"}`)
	})
	for _, kind := range []string{"audio", "transcript", "emotions", "summary"} {
		kind := kind
		mux.HandleFunc("/api/sessions/s1/"+kind, func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			paths = append(paths, r.URL.Path)
			mu.Unlock()
			fmt.Fprintf(w, `{"%s":{"status":"completed"}}`, kind)
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	deps := &Dependencies{
		Client: client.New(config.Config{APIBase: srv.URL + "/api", Token: "t"}),
	}
	cmd := NewStatusCmd(deps)
	cmd.SetArgs([]string{"s1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 4 {
		t.Errorf("descriptor requests = %v, want one per derived artifact", paths)
	}
	for _, p := range paths {
		// Metadata has no descriptor endpoint; its row comes from the
		// session record.
		if strings.HasSuffix(p, "/metadata") {
			t.Errorf("unexpected metadata descriptor request: %s", p)
		}
	}
}
