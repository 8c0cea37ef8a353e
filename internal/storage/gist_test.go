package storage

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mhofmann/dpwt-tracker/internal/detector"
)

func TestNewGistStore(t *testing.T) {
	tests := []struct {
		name        string
		gistID      string
		githubToken string
		wantError   bool
	}{
		{
			name:        "valid parameters",
			gistID:      "abc123",
			githubToken: "ghp_token",
			wantError:   false,
		},
		{
			name:        "empty gist ID",
			gistID:      "",
			githubToken: "ghp_token",
			wantError:   true,
		},
		{
			name:        "empty github token",
			gistID:      "abc123",
			githubToken: "",
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewGistStore(tt.gistID, tt.githubToken)

			if tt.wantError {
				if err == nil {
					t.Error("NewGistStore() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGistStore() unexpected error: %v", err)
			}
			if store.gistID != tt.gistID {
				t.Errorf("gistID = %q, want %q", store.gistID, tt.gistID)
			}
			if store.httpClient == nil {
				t.Error("httpClient should not be nil")
			}
		})
	}
}

// fakeGist serves a minimal slice of the Gist API: GET returns the files
// map, PATCH merges file contents into it.
type fakeGist struct {
	files    map[string]string
	patches  int
	lastAuth string
}

func (f *fakeGist) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")

		switch r.Method {
		case http.MethodGet:
			files := map[string]map[string]string{}
			for name, content := range f.files {
				files[name] = map[string]string{"content": content}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"files": files})
		case http.MethodPatch:
			f.patches++
			var payload struct {
				Files map[string]struct {
					Content string `json:"content"`
				} `json:"files"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			for name, file := range payload.Files {
				f.files[name] = file.Content
			}
			w.Write([]byte("{}"))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newTestGistStore(t *testing.T, gist *fakeGist) *GistStore {
	t.Helper()
	server := httptest.NewServer(gist.handler())
	t.Cleanup(server.Close)

	store, err := NewGistStore("gist123", "ghp_token")
	if err != nil {
		t.Fatalf("NewGistStore() error: %v", err)
	}
	store.baseURL = server.URL
	return store
}

func TestGistStore_LoadMissing(t *testing.T) {
	store := newTestGistStore(t, &fakeGist{files: map[string]string{}})

	state, version, err := store.Load(2026)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}
	if state.Season != 2026 {
		t.Errorf("Season = %d, want 2026", state.Season)
	}
}

func TestGistStore_SaveLoadRoundTrip(t *testing.T) {
	gist := &fakeGist{files: map[string]string{}}
	store := newTestGistStore(t, gist)

	state := detector.NewState(2026)
	state.SetProgress("1234", 3, 69)
	state.MarkReminder("5678")

	if err := store.Save(2026, state, 0); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if gist.patches != 1 {
		t.Errorf("patches = %d, want 1", gist.patches)
	}
	if _, ok := gist.files["state-2026.json"]; !ok {
		t.Fatalf("gist files = %v, want state-2026.json", gist.files)
	}
	if !strings.HasPrefix(gist.lastAuth, "token ") {
		t.Errorf("Authorization = %q, want token auth", gist.lastAuth)
	}

	loaded, version, err := store.Load(2026)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if strokes, ok := loaded.Progress("1234", 3); !ok || strokes != 69 {
		t.Errorf("Progress(1234, 3) = %d, %v, want 69, true", strokes, ok)
	}
	if !loaded.HasReminder("5678") {
		t.Error("reminder mark should survive the round trip")
	}
}

func TestGistStore_SaveVersionConflict(t *testing.T) {
	gist := &fakeGist{files: map[string]string{}}
	store := newTestGistStore(t, gist)

	state := detector.NewState(2026)
	if err := store.Save(2026, state, 0); err != nil {
		t.Fatalf("first Save() error: %v", err)
	}

	err := store.Save(2026, state, 0)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Save() with stale version = %v, want ErrConflict", err)
	}
	if gist.patches != 1 {
		t.Errorf("patches = %d, want no patch on conflict", gist.patches)
	}
}

func TestGistStore_AppendArchive(t *testing.T) {
	gist := &fakeGist{files: map[string]string{}}
	store := newTestGistStore(t, gist)

	snap := testSnapshot("1234", "Open de España")

	written, err := store.AppendArchive(2026, snap)
	if err != nil {
		t.Fatalf("AppendArchive() error: %v", err)
	}
	if !written {
		t.Error("first append should write a record")
	}

	written, err = store.AppendArchive(2026, snap)
	if err != nil {
		t.Fatalf("second AppendArchive() error: %v", err)
	}
	if written {
		t.Error("duplicate append should be skipped")
	}

	content := gist.files["archive-2026.jsonl"]
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 1 {
		t.Fatalf("archive has %d lines, want 1", len(lines))
	}

	// New key appends without clobbering the existing line.
	if _, err := store.AppendArchive(2026, testSnapshot("5678", "BMW International Open")); err != nil {
		t.Fatalf("third AppendArchive() error: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(gist.files["archive-2026.jsonl"]), "\n")
	if len(lines) != 2 {
		t.Fatalf("archive has %d lines after second key, want 2", len(lines))
	}
}

func TestGistStore_AppendSummary(t *testing.T) {
	gist := &fakeGist{files: map[string]string{}}
	store := newTestGistStore(t, gist)

	if err := store.AppendSummary(2026, testSnapshot("1234", "Open de España")); err != nil {
		t.Fatalf("AppendSummary() error: %v", err)
	}
	if err := store.AppendSummary(2026, testSnapshot("1234", "Open de España")); err != nil {
		t.Fatalf("second AppendSummary() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(gist.files["summary.csv"]), "\n")
	if len(lines) != 2 {
		t.Fatalf("summary has %d lines, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "season,event_key") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestGistStore_Encryption(t *testing.T) {
	gist := &fakeGist{files: map[string]string{}}
	server := httptest.NewServer(gist.handler())
	defer server.Close()

	store, err := NewGistStoreWithEncryption("gist123", "ghp_token", "passphrase")
	if err != nil {
		t.Fatalf("NewGistStoreWithEncryption() error: %v", err)
	}
	store.baseURL = server.URL

	state := detector.NewState(2026)
	state.MarkFinished("1234")
	if err := store.Save(2026, state, 0); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Stored content must not be readable JSON.
	stored := gist.files["state-2026.json"]
	if strings.Contains(stored, "finished_notified") {
		t.Error("state should be encrypted in the gist")
	}

	loaded, _, err := store.Load(2026)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !loaded.HasFinished("1234") {
		t.Error("encrypted state should round trip")
	}

	// Summary stays plaintext for browsing.
	if err := store.AppendSummary(2026, testSnapshot("1234", "Open de España")); err != nil {
		t.Fatalf("AppendSummary() error: %v", err)
	}
	if !strings.HasPrefix(gist.files["summary.csv"], "season,event_key") {
		t.Error("summary should stay plaintext")
	}
}

func TestGistStore_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store, err := NewGistStore("gist123", "bad_token")
	if err != nil {
		t.Fatalf("NewGistStore() error: %v", err)
	}
	store.baseURL = server.URL

	if _, _, err := store.Load(2026); err == nil {
		t.Error("Load() should surface the API error")
	}
}
