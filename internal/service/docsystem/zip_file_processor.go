package docsystem

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

// maxZipBytes bounds the archive read into memory.
const maxZipBytes = 50 << 20

// zipFileProcessor processes zip files and imports their contents.
// Implements FileProcessor interface using Strategy pattern.
//
// Responsibilities:
//   - Extract files from zip archive, turning folders into parent documents
//   - Route each file to appropriate ContentConverter based on extension
//   - Handle create/update/skip decisions based on existing documents
//
// A file and a folder with the same name ("Notes.md" and "Notes/") share one
// document: the folder's files become children of the file's document.
type zipFileProcessor struct {
	docService        docsysSvc.DocumentService
	converterRegistry *converter.ConverterRegistry
	logger            *slog.Logger
}

// NewZipFileProcessor creates a new zip file processor
func NewZipFileProcessor(
	docService docsysSvc.DocumentService,
	converterRegistry *converter.ConverterRegistry,
	logger *slog.Logger,
) docsysSvc.FileProcessor {
	return &zipFileProcessor{
		docService:        docService,
		converterRegistry: converterRegistry,
		logger:            logger,
	}
}

// CanProcess returns true for .zip files
func (p *zipFileProcessor) CanProcess(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".zip"
}

// Process extracts and imports documents from a zip file
// If overwrite is true, existing documents are updated; if false, duplicates are skipped
func (p *zipFileProcessor) Process(
	ctx context.Context,
	ownerID string,
	parentID *string,
	file io.Reader,
	filename string,
	overwrite bool,
) (*docsysSvc.ImportResult, error) {
	// Read zip file into memory
	zipData, err := io.ReadAll(io.LimitReader(file, maxZipBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}
	if len(zipData) > maxZipBytes {
		return nil, fmt.Errorf("zip file exceeds %d MiB", maxZipBytes>>20)
	}

	zipFile, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip file: %w", err)
	}

	// Shallow entries first so folder documents exist before their children.
	entries := make([]*zip.File, 0, len(zipFile.File))
	for _, entry := range zipFile.File {
		if !entry.FileInfo().IsDir() {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := strings.Count(entries[i].Name, "/"), strings.Count(entries[j].Name, "/")
		if di != dj {
			return di < dj
		}
		return entries[i].Name < entries[j].Name
	})

	w := newFileImporter(p.docService, p.converterRegistry, p.logger, ownerID, overwrite)
	folders := map[string]*string{"": parentID} // zip folder path → document id

	for _, entry := range entries {
		name := strings.TrimLeft(entry.Name, "/")
		if strings.HasPrefix(path.Base(name), ".") || strings.HasPrefix(name, "__MACOSX/") {
			continue
		}

		// Check if file extension is supported
		ext := filepath.Ext(name)
		if p.converterRegistry.GetConverter(ext) == nil {
			p.logger.Debug("skipping unsupported file type", "file", name, "ext", ext)
			w.result.Summary.Skipped++
			w.result.Summary.TotalFiles++
			continue
		}

		dir := zipDir(name)
		parent, err := p.resolveFolder(ctx, w, folders, dir)
		if err != nil {
			w.result.Summary.TotalFiles++
			w.addError(name, fmt.Sprintf("failed to create folder %q: %v", dir, err))
			continue
		}

		data, err := readEntry(entry)
		if err != nil {
			w.result.Summary.TotalFiles++
			w.addError(name, fmt.Sprintf("failed to read file: %v", err))
			continue
		}

		id := w.importFile(ctx, parent, name, name, data)
		if id == "" {
			continue
		}
		// "Notes.md" adopts the files of a sibling "Notes/" folder.
		folderPath := BuildFullPath(dir, strings.TrimSuffix(path.Base(name), path.Ext(name)))
		if _, ok := folders[folderPath]; !ok {
			folders[folderPath] = &id
		}
	}

	p.logger.Info("zip file processing complete",
		"filename", filename,
		"owner_id", ownerID,
		"created", w.result.Summary.Created,
		"updated", w.result.Summary.Updated,
		"skipped", w.result.Summary.Skipped,
		"failed", w.result.Summary.Failed,
		"total_files", w.result.Summary.TotalFiles,
	)

	return w.result, nil
}

// resolveFolder returns the document id standing for dir, creating folder
// documents for it and its ancestors as needed.
func (p *zipFileProcessor) resolveFolder(ctx context.Context, w *fileImporter, folders map[string]*string, dir string) (*string, error) {
	if id, ok := folders[dir]; ok {
		return id, nil
	}
	parent, err := p.resolveFolder(ctx, w, folders, zipDir(dir))
	if err != nil {
		return nil, err
	}
	id, err := w.folder(ctx, parent, dir, path.Base(dir))
	if err != nil {
		return nil, err
	}
	folders[dir] = &id
	return &id, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	r, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Name returns the processor name
func (p *zipFileProcessor) Name() string {
	return "zip"
}
