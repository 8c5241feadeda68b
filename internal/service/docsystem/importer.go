package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	models "github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/editor/autosave"
	"github.com/Priya-753/notion-clone/internal/editor/node"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

// fileImporter turns converted files into documents. It remembers the titles
// of each parent's children so duplicates are detected without a query per
// file.
type fileImporter struct {
	docService docsysSvc.DocumentService
	converters *converter.ConverterRegistry
	logger     *slog.Logger

	ownerID   string
	overwrite bool
	children  map[string]map[string]string // parent id → title → document id
	result    *docsysSvc.ImportResult
}

func newFileImporter(
	docService docsysSvc.DocumentService,
	converters *converter.ConverterRegistry,
	logger *slog.Logger,
	ownerID string,
	overwrite bool,
) *fileImporter {
	return &fileImporter{
		docService: docService,
		converters: converters,
		logger:     logger,
		ownerID:    ownerID,
		overwrite:  overwrite,
		children:   make(map[string]map[string]string),
		result: &docsysSvc.ImportResult{
			Errors:    []docsysSvc.ImportError{},
			Documents: []docsysSvc.ImportDocument{},
		},
	}
}

// siblings returns title → id for the live children of parentID.
func (w *fileImporter) siblings(ctx context.Context, parentID *string) (map[string]string, error) {
	key := parentKey(parentID)
	if titles, ok := w.children[key]; ok {
		return titles, nil
	}
	docs, err := w.docService.ListChildren(ctx, w.ownerID, parentID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(docs))
	// Newest first; the oldest document wins a duplicated title.
	for i := len(docs) - 1; i >= 0; i-- {
		if _, ok := titles[docs[i].Title]; !ok {
			titles[docs[i].Title] = docs[i].ID
		}
	}
	w.children[key] = titles
	return titles, nil
}

// importFile converts data and creates, updates or skips the document it
// describes. It returns the id of the resulting document, "" on failure.
func (w *fileImporter) importFile(ctx context.Context, parentID *string, displayPath, filename string, data []byte) string {
	w.result.Summary.TotalFiles++

	converted, err := w.converters.Convert(ctx, filename, data)
	if err != nil {
		w.addError(displayPath, fmt.Sprintf("failed to convert file: %v", err))
		return ""
	}

	tree := node.Parse(converted.HTML)
	title := TitleFromFilename(filename)
	switch {
	case converted.Title != nil:
		title = *converted.Title
	case tree.Content[0].Type == node.TypeHeading:
		if derived, ok := autosave.DeriveTitle(tree); ok && derived != models.DefaultTitle {
			title = derived
		}
	}
	title = displayTitle(title)
	content := withTitleHeading(tree, title)

	siblings, err := w.siblings(ctx, parentID)
	if err != nil {
		w.addError(displayPath, fmt.Sprintf("failed to check for existing document: %v", err))
		return ""
	}

	if existingID, exists := siblings[title]; exists {
		if !w.overwrite {
			w.record(existingID, displayPath, title, "skipped")
			w.result.Summary.Skipped++
			w.logger.Debug("document skipped (duplicate)", "path", displayPath, "id", existingID)
			return existingID
		}
		req := &docsysSvc.UpdateDocumentRequest{Content: &content}
		if converted.Icon != nil {
			req.Icon = models.Set(*converted.Icon)
		}
		if converted.CoverImage != nil {
			req.CoverImage = models.Set(*converted.CoverImage)
		}
		doc, err := w.docService.UpdateDocument(ctx, w.ownerID, existingID, req)
		if err != nil {
			w.addError(displayPath, fmt.Sprintf("failed to update document: %v", err))
			return ""
		}
		w.record(doc.ID, displayPath, doc.Title, "updated")
		w.result.Summary.Updated++
		w.logger.Debug("document updated", "path", displayPath, "id", doc.ID)
		return doc.ID
	}

	doc, err := w.docService.CreateDocument(ctx, &docsysSvc.CreateDocumentRequest{
		OwnerID:    w.ownerID,
		ParentID:   parentID,
		Title:      title,
		Content:    &content,
		Icon:       converted.Icon,
		CoverImage: converted.CoverImage,
	})
	if err != nil {
		w.addError(displayPath, fmt.Sprintf("failed to create document: %v", err))
		return ""
	}
	siblings[doc.Title] = doc.ID
	w.record(doc.ID, displayPath, doc.Title, "created")
	w.result.Summary.Created++
	w.logger.Debug("document created", "path", displayPath, "id", doc.ID)
	return doc.ID
}

// folder finds or creates the document standing for a zip folder.
func (w *fileImporter) folder(ctx context.Context, parentID *string, displayPath, title string) (string, error) {
	siblings, err := w.siblings(ctx, parentID)
	if err != nil {
		return "", err
	}
	title = displayTitle(title)
	if id, ok := siblings[title]; ok {
		return id, nil
	}
	content := withTitleHeading(node.Parse(""), title)
	doc, err := w.docService.CreateDocument(ctx, &docsysSvc.CreateDocumentRequest{
		OwnerID:  w.ownerID,
		ParentID: parentID,
		Title:    title,
		Content:  &content,
	})
	if err != nil {
		return "", err
	}
	siblings[doc.Title] = doc.ID
	w.record(doc.ID, displayPath, doc.Title, "created")
	w.result.Summary.Created++
	return doc.ID, nil
}

func (w *fileImporter) record(id, displayPath, title, action string) {
	w.result.Documents = append(w.result.Documents, docsysSvc.ImportDocument{
		ID:     id,
		Path:   displayPath,
		Title:  title,
		Action: action,
	})
}

// addError adds an error to the result
func (w *fileImporter) addError(file, errorMsg string) {
	w.result.Summary.Failed++
	w.result.Errors = append(w.result.Errors, docsysSvc.ImportError{
		File:  file,
		Error: errorMsg,
	})
	w.logger.Warn("file processing failed",
		"file", file,
		"error", errorMsg,
	)
}

// withTitleHeading serializes doc led by a level 1 heading holding title,
// unless it already starts with a heading.
func withTitleHeading(doc *node.Node, title string) string {
	if doc.Content[0].Type != node.TypeHeading {
		doc.Content = append([]*node.Node{node.Heading(1, node.Text(title))}, doc.Content...)
	}
	return node.Serialize(doc)
}
