// Package search indexes documents in Meilisearch and answers searches from
// it, falling back to the document store when the index is unavailable.
package search

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

const healthInterval = 10 * time.Second

// Record is the indexed form of a document.
type Record struct {
	ID        string  `json:"id"`
	OwnerID   string  `json:"owner_id"`
	ParentID  *string `json:"parent_id"`
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Icon      *string `json:"icon"`
	Archived  bool    `json:"is_archived"`
	UpdatedAt int64   `json:"updated_at"`
}

// NewRecord converts a document, flattening its content to plain text.
func NewRecord(doc *docsystem.Document) Record {
	return Record{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		ParentID:  doc.ParentID,
		Title:     doc.Title,
		Text:      PlainText(doc.Content),
		Icon:      doc.Icon,
		Archived:  doc.IsArchived,
		UpdatedAt: doc.UpdatedAt.Unix(),
	}
}

// PlainText returns the text of serialized content, one line per textblock.
func PlainText(content string) string {
	doc := node.Parse(content)
	var lines []string
	for _, p := range node.Textblocks(doc) {
		tb, _ := doc.At(p)
		if text := strings.TrimSpace(node.InlineText(tb.Content)); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// Meili is the Meilisearch backend.
type Meili struct {
	client  meili.ServiceManager
	index   string
	logger  *slog.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a client, configures the index and starts a health
// monitor. An unreachable server is not an error; the index reports
// unhealthy until it recovers.
func NewMeili(url, apiKey, prefix string, logger *slog.Logger) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		index:  prefix + "documents",
		logger: logger,
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", "url", url, "error", err)
	} else {
		m.healthy.Store(true)
		m.configure()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configure() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: m.index, PrimaryKey: "id"}); err != nil {
		m.logger.Debug("create index (may already exist)", "index", m.index, "error", err)
	}
	index := m.client.Index(m.index)

	filterable := []interface{}{"owner_id", "is_archived"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn("update filterable attributes", "index", m.index, "error", err)
	}
	searchable := []string{"title", "text"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn("update searchable attributes", "index", m.index, "error", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			was := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !was {
				m.logger.Info("meilisearch recovered, reconfiguring index", "index", m.index)
				m.configure()
			}
		}
	}
}

// Close stops the health monitor.
func (m *Meili) Close() { close(m.done) }

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool { return m.healthy.Load() }

// Search returns the ids of matching documents, best match first.
func (m *Meili) Search(opts *docsystem.SearchOptions) ([]string, error) {
	req := &meili.SearchRequest{
		Limit:                int64(opts.Limit),
		Offset:               int64(opts.Offset),
		Filter:               Filter(opts.OwnerID, opts.Archived),
		AttributesToRetrieve: []string{"id"},
		AttributesToSearchOn: searchOn(opts),
	}
	resp, err := m.client.Index(m.index).Search(opts.Query, req)
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	ids := make([]string, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var id string
		if raw, ok := hit["id"]; ok && json.Unmarshal(raw, &id) == nil && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Index adds or replaces records.
func (m *Meili) Index(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(m.index).AddDocuments(records, nil)
	return err
}

// Delete removes records by id.
func (m *Meili) Delete(ids []string) error {
	for _, id := range ids {
		if _, err := m.client.Index(m.index).DeleteDocument(id, nil); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}
	return nil
}

// Filter scopes a search to one owner's live or archived documents.
func Filter(ownerID string, archived bool) string {
	return fmt.Sprintf("owner_id = %s AND is_archived = %t", quote(ownerID), archived)
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func searchOn(opts *docsystem.SearchOptions) []string {
	var attrs []string
	if opts.Searches(docsystem.SearchFieldTitle) {
		attrs = append(attrs, "title")
	}
	if opts.Searches(docsystem.SearchFieldContent) {
		attrs = append(attrs, "text")
	}
	return attrs
}
