// Package source fetches task, habit and completion records from the
// backend, with a disk cache honouring ETag / Last-Modified.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"plancal/internal/config"
	appLog "plancal/internal/log"
	"plancal/internal/model"
	"plancal/internal/records"
)

// ErrNoSource is returned when neither a snapshot file nor the task and
// habit URLs are configured.
var ErrNoSource = errors.New("source: no snapshot file or record URLs configured")

// FetchResult contains the outcome of fetching one URL.
type FetchResult struct {
	URL       string
	Body      []byte
	FromCache bool // true if the cached body was reused (304 or fallback)
}

// cacheEntry holds HTTP cache metadata for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads record payloads with a disk-backed HTTP cache.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	now      func() time.Time
}

// NewFetcher creates a Fetcher caching under cacheDir. An empty cacheDir
// falls back to a relative directory so development runs need no setup.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/cache"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		cacheDir: cacheDir,
		now:      time.Now,
	}
}

// Load builds a snapshot from src: the snapshot file when set, otherwise
// the tasks, habits and (optional) logs endpoints.
func (f *Fetcher) Load(ctx context.Context, src config.SourceConfig) (model.Snapshot, error) {
	if src.File != "" {
		body, err := os.ReadFile(src.File)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("source: read snapshot: %w", err)
		}
		snap, err := records.ParseSnapshot(body)
		if err != nil {
			return model.Snapshot{}, err
		}
		snap.FetchedAt = f.now()
		appLog.Info("snapshot loaded from file", "path", src.File,
			"tasks", len(snap.Tasks), "habits", len(snap.Habits), "logs", len(snap.Logs))
		return snap, nil
	}

	if src.TasksURL == "" || src.HabitsURL == "" {
		return model.Snapshot{}, ErrNoSource
	}

	var snap model.Snapshot
	res, err := f.FetchOne(ctx, src.TasksURL)
	if err != nil {
		return model.Snapshot{}, err
	}
	if snap.Tasks, err = records.ParseTasks(res.Body); err != nil {
		return model.Snapshot{}, err
	}

	if res, err = f.FetchOne(ctx, src.HabitsURL); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Habits, err = records.ParseHabits(res.Body); err != nil {
		return model.Snapshot{}, err
	}

	if src.LogsURL != "" {
		if res, err = f.FetchOne(ctx, src.LogsURL); err != nil {
			return model.Snapshot{}, err
		}
		if snap.Logs, err = records.ParseLogs(res.Body); err != nil {
			return model.Snapshot{}, err
		}
	}

	snap.FetchedAt = f.now()
	appLog.Info("snapshot fetched", "tasks", len(snap.Tasks), "habits", len(snap.Habits), "logs", len(snap.Logs))
	return snap, nil
}

// FetchOne fetches a single URL, honoring ETag and Last-Modified, and falls
// back to the cached body on network errors and non-OK responses.
func (f *Fetcher) FetchOne(ctx context.Context, url string) (FetchResult, error) {
	if url == "" {
		return FetchResult{}, errors.New("source: URL is empty")
	}

	cachePath := f.cachePathForURL(url)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return FetchResult{}, err
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, err
	}
	req.Header.Set("Accept", "application/json")
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("fetch start", "url", redactURL(url))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("fetch network error, using cached body", err, "url", redactURL(url))
			return FetchResult{URL: url, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return FetchResult{}, err
		}
		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			appLog.Error("cache save failed", err, "url", redactURL(url))
		}
		appLog.Debug("fetch success", "url", redactURL(url), "status", resp.StatusCode, "bytes", len(body))
		return FetchResult{URL: url, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("source: 304 Not Modified but no cached body available")
		}
		appLog.Debug("fetch not modified; using cache", "url", redactURL(url))
		return FetchResult{URL: url, Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(url), "status", resp.StatusCode)
			return FetchResult{URL: url, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("source: %s: %s", redactURL(url), resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.json"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = f.now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL keeps scheme and host only, hiding tokens in paths and queries.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
