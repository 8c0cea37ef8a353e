package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const playerPageHTML = `
<html>
  <body>
    <nav>
      <a href="/dpworld-tour/">Schedule</a>
      <a href="/players/">Players</a>
    </nav>
    <section class="playing-this-week">
      <h2>Playing this week</h2>
      <a href="/dpworld-tour/open-de-espana-2026/">Open de España</a>
    </section>
  </body>
</html>`

func TestDiscoverCurrentTournament(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/players/player-35703/") {
			t.Errorf("path = %q, want player page", r.URL.Path)
		}
		w.Write([]byte(playerPageHTML))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")

	link, err := client.DiscoverCurrentTournament(context.Background(), 35703)
	if err != nil {
		t.Fatalf("DiscoverCurrentTournament() error: %v", err)
	}
	want := server.URL + "/dpworld-tour/open-de-espana-2026"
	if link != want {
		t.Errorf("link = %q, want %q", link, want)
	}
}

func TestDiscoverCurrentTournament_AbsoluteLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="https://www.europeantour.com/dpworld-tour/hero-indian-open-2026/">Hero Indian Open</a>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")

	link, err := client.DiscoverCurrentTournament(context.Background(), 35703)
	if err != nil {
		t.Fatalf("DiscoverCurrentTournament() error: %v", err)
	}
	if !strings.HasSuffix(link, "/dpworld-tour/hero-indian-open-2026") {
		t.Errorf("link = %q", link)
	}
}

func TestDiscoverCurrentTournament_NoLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/players/">Players</a></body></html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")

	if _, err := client.DiscoverCurrentTournament(context.Background(), 35703); err == nil {
		t.Error("expected an error when no tournament link is present")
	}
}
