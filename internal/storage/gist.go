package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/crypto"
	"github.com/mhofmann/dpwt-tracker/internal/detector"
	"github.com/mhofmann/dpwt-tracker/internal/results"
)

const (
	gistAPIURL  = "https://api.github.com/gists"
	gistTimeout = 15 * time.Second
)

// GistStore persists state and archive in a GitHub Gist, one file per
// document. Useful for scheduled runners with no filesystem of their own.
// Each save replaces the whole file content with a single PATCH, which is
// the atomicity unit the Gist API offers; the version check before the PATCH
// is best-effort and assumes the deployment is single-writer.
type GistStore struct {
	gistID      string
	githubToken string
	baseURL     string
	httpClient  *http.Client
	encryptor   *crypto.Encryptor
}

// NewGistStore creates a Gist-backed store.
func NewGistStore(gistID, githubToken string) (*GistStore, error) {
	if gistID == "" {
		return nil, fmt.Errorf("gist ID is required")
	}
	if githubToken == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	return &GistStore{
		gistID:      gistID,
		githubToken: githubToken,
		baseURL:     gistAPIURL,
		httpClient: &http.Client{
			Timeout: gistTimeout,
		},
	}, nil
}

// NewGistStoreWithEncryption creates a Gist-backed store that encrypts the
// state and archive files with the passphrase. The summary CSV stays
// plaintext so it remains browsable in the gist. An empty passphrase
// disables encryption.
func NewGistStoreWithEncryption(gistID, githubToken, passphrase string) (*GistStore, error) {
	store, err := NewGistStore(gistID, githubToken)
	if err != nil {
		return nil, err
	}
	store.encryptor = crypto.NewEncryptor(passphrase)
	return store, nil
}

func stateFilename(season int) string   { return fmt.Sprintf("state-%d.json", season) }
func archiveFilename(season int) string { return fmt.Sprintf("archive-%d.jsonl", season) }

const summaryFilename = "summary.csv"

// Load retrieves the season's state from the Gist.
func (g *GistStore) Load(season int) (*detector.State, int64, error) {
	content, err := g.readEncrypted(stateFilename(season))
	if err != nil {
		return nil, 0, err
	}
	if content == "" {
		return detector.NewState(season), 0, nil
	}

	var doc stateDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, 0, fmt.Errorf("parsing state: %w", err)
	}
	doc.State.Normalize()
	return &doc.State, doc.Version, nil
}

// Save replaces the season's state file with the full new blob, after
// re-reading the stored version to detect a concurrent update.
func (g *GistStore) Save(season int, state *detector.State, version int64) error {
	content, err := g.readEncrypted(stateFilename(season))
	if err != nil {
		return err
	}

	currentVersion := int64(0)
	if content != "" {
		var doc stateDocument
		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			return fmt.Errorf("parsing stored state: %w", err)
		}
		currentVersion = doc.Version
	}
	if currentVersion != version {
		return fmt.Errorf("stored version %d, loaded version %d: %w", currentVersion, version, ErrConflict)
	}

	doc := stateDocument{Version: version + 1, State: *state}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	return g.writeEncrypted(stateFilename(season), string(data))
}

// AppendArchive appends the snapshot to the season's archive file in the
// Gist, unless the event key was already archived.
func (g *GistStore) AppendArchive(season int, snap *results.TournamentSnapshot) (bool, error) {
	content, err := g.readEncrypted(archiveFilename(season))
	if err != nil {
		return false, err
	}
	if archiveContains([]byte(content), snap.EventKey) {
		return false, nil
	}

	line, err := archiveLine(snap)
	if err != nil {
		return false, fmt.Errorf("encoding archive record: %w", err)
	}

	if err := g.writeEncrypted(archiveFilename(season), content+string(line)); err != nil {
		return false, err
	}
	return true, nil
}

// AppendSummary appends the tournament's row to the summary CSV file.
func (g *GistStore) AppendSummary(season int, snap *results.TournamentSnapshot) error {
	content, err := g.readFile(summaryFilename)
	if err != nil {
		return err
	}
	if summaryContains([]byte(content), snap.EventKey) {
		return nil
	}

	var buf bytes.Buffer
	if content == "" {
		buf.WriteString(joinCSV(summaryHeader))
	} else {
		buf.WriteString(content)
		if !bytes.HasSuffix([]byte(content), []byte("\n")) {
			buf.WriteString("\n")
		}
	}
	buf.WriteString(joinCSV(summaryRow(season, snap)))

	return g.writeFile(summaryFilename, buf.String())
}

func joinCSV(fields []string) string {
	var buf bytes.Buffer
	for i, field := range fields {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(field)
	}
	buf.WriteString("\n")
	return buf.String()
}

// readEncrypted reads one file's content and decrypts it when an encryptor
// is configured.
func (g *GistStore) readEncrypted(filename string) (string, error) {
	content, err := g.readFile(filename)
	if err != nil {
		return "", err
	}
	return g.encryptor.Decrypt(content)
}

// writeEncrypted encrypts content when an encryptor is configured and writes
// it to the Gist.
func (g *GistStore) writeEncrypted(filename, content string) error {
	encrypted, err := g.encryptor.Encrypt(content)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", filename, err)
	}
	return g.writeFile(filename, encrypted)
}

// readFile fetches one file's content from the Gist. A missing gist file
// yields an empty string, not an error.
func (g *GistStore) readFile(filename string) (string, error) {
	url := fmt.Sprintf("%s/%s", g.baseURL, g.gistID)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Don't include response body in error to prevent information leakage
		return "", fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}

	var gistResp struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gistResp); err != nil {
		return "", fmt.Errorf("decoding gist response: %w", err)
	}

	file, exists := gistResp.Files[filename]
	if !exists {
		return "", nil
	}
	return file.Content, nil
}

// writeFile replaces one file's content in the Gist with a PATCH.
func (g *GistStore) writeFile(filename, content string) error {
	payload := map[string]interface{}{
		"files": map[string]interface{}{
			filename: map[string]string{
				"content": content,
			},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s", g.baseURL, g.gistID)
	req, err := http.NewRequest("PATCH", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("updating gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}
	return nil
}
