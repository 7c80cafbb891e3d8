package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

const formatVersion = 1

type fileDocument struct {
	Version      int               `yaml:"version"`
	Revision     int64             `yaml:"revision"`
	UpdatedAt    time.Time         `yaml:"updated_at,omitempty"`
	Publications []publicationNode `yaml:"publications"`
}

type publicationNode struct {
	Title       string    `yaml:"title"`
	ID          string    `yaml:"id"`
	URL         string    `yaml:"url,omitempty"`
	PublishedAt time.Time `yaml:"published_at"`
	Assets      []string  `yaml:"assets"`
}

// FileRegistry keeps the usage registry in a human-readable YAML document.
type FileRegistry struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	revision int64
	read     bool
}

var _ ports.UsageRegistry = (*FileRegistry)(nil)

// NewFileRegistry binds the registry to path. A missing file reads as empty.
func NewFileRegistry(path string, logger *slog.Logger) *FileRegistry {
	return &FileRegistry{path: path, logger: logger, now: time.Now}
}

// UsedAssets returns every asset URL recorded so far.
func (r *FileRegistry) UsedAssets(ctx context.Context) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.revision = doc.Revision
	r.read = true
	r.mu.Unlock()

	used := make(map[string]struct{})
	for _, p := range doc.Publications {
		for _, asset := range p.Assets {
			used[asset] = struct{}{}
		}
	}
	r.debug("registry loaded", "path", r.path, "revision", doc.Revision, "publications", len(doc.Publications), "assets", len(used))
	return used, nil
}

// Append inserts record at the head of the publication list. The file is
// re-read first; any asset already recorded there is a conflict and leaves
// the file untouched. A revision that moved since UsedAssets is merged when
// the new record overlaps nothing the other writer added.
func (r *FileRegistry) Append(ctx context.Context, record domain.UsageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := r.load()
	if err != nil {
		return err
	}

	r.mu.Lock()
	seen, read := r.revision, r.read
	r.mu.Unlock()

	moved := read && doc.Revision != seen
	if dup := firstRecorded(doc, record.Assets); dup != "" {
		if moved {
			return fmt.Errorf("%w: asset %s recorded by a concurrent writer (revision %d, read at %d)",
				domain.ErrRegistryConflict, dup, doc.Revision, seen)
		}
		return fmt.Errorf("%w: asset %s already recorded (revision %d)", domain.ErrRegistryConflict, dup, doc.Revision)
	}
	if moved {
		r.debug("merging over concurrent registry write", "seen", seen, "current", doc.Revision)
	}

	node := publicationNode{
		Title:       record.Title,
		ID:          record.DocumentID,
		URL:         record.URL,
		PublishedAt: record.PublishedAt.UTC(),
		Assets:      append([]string(nil), record.Assets...),
	}
	doc.Publications = append([]publicationNode{node}, doc.Publications...)
	doc.Version = formatVersion
	doc.Revision++
	doc.UpdatedAt = r.now().UTC()

	if err := r.write(doc); err != nil {
		return err
	}

	r.mu.Lock()
	r.revision = doc.Revision
	r.read = true
	r.mu.Unlock()

	r.debug("registry appended", "path", r.path, "revision", doc.Revision, "id", record.DocumentID, "assets", len(record.Assets))
	return nil
}

func firstRecorded(doc fileDocument, assets []string) string {
	recorded := make(map[string]struct{})
	for _, p := range doc.Publications {
		for _, a := range p.Assets {
			recorded[a] = struct{}{}
		}
	}
	for _, a := range assets {
		if _, ok := recorded[a]; ok {
			return a
		}
	}
	return ""
}

func (r *FileRegistry) load() (fileDocument, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileDocument{Version: formatVersion}, nil
	}
	if err != nil {
		return fileDocument{}, fmt.Errorf("read registry %s: %w", r.path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("parse registry %s: %w", r.path, err)
	}
	if doc.Version == 0 {
		doc.Version = formatVersion
	}
	return doc, nil
}

// write replaces the file through a temp file and rename so a failed write
// never leaves a partial registry behind. The replacement keeps the mode of
// the file it replaces.
func (r *FileRegistry) write(doc fileDocument) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(r.path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp registry: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp registry: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp registry: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

func (r *FileRegistry) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
