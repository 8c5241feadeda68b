package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

// importService implements the ImportService interface
type importService struct {
	docService docsysSvc.DocumentService
	processors *FileProcessorRegistry
	logger     *slog.Logger
}

// NewImportService creates an import service with the zip and individual
// file processors registered, zip first.
func NewImportService(
	docService docsysSvc.DocumentService,
	converters *converter.ConverterRegistry,
	logger *slog.Logger,
) docsysSvc.ImportService {
	registry := NewFileProcessorRegistry(
		NewZipFileProcessor(docService, converters, logger),
		NewIndividualFileProcessor(docService, converters, logger),
	)
	logger.Debug("import processors registered", "processors", registry.Names())
	return &importService{
		docService: docService,
		processors: registry,
		logger:     logger,
	}
}

// ProcessFiles routes each file to its processor and merges the results.
// A file no processor accepts counts as failed; the batch carries on.
func (s *importService) ProcessFiles(
	ctx context.Context,
	ownerID string,
	parentID *string,
	files []docsysSvc.UploadedFile,
	overwrite bool,
) (*docsysSvc.ImportResult, error) {
	parentID = normalizeParent(parentID)
	if parentID != nil {
		parent, err := s.docService.GetDocument(ctx, ownerID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.IsArchived {
			return nil, invalid(fmt.Errorf("parent document %s is archived", *parentID))
		}
	}

	result := &docsysSvc.ImportResult{
		Errors:    []docsysSvc.ImportError{},
		Documents: []docsysSvc.ImportDocument{},
	}
	for _, file := range files {
		processor := s.processors.GetProcessor(file.Filename)
		if processor == nil {
			result.Summary.TotalFiles++
			result.Summary.Failed++
			result.Errors = append(result.Errors, docsysSvc.ImportError{
				File:  file.Filename,
				Error: "unsupported file type",
			})
			continue
		}

		s.logger.Debug("processing import file", "filename", file.Filename, "processor", processor.Name())
		processed, err := processor.Process(ctx, ownerID, parentID, file.Content, file.Filename, overwrite)
		if err != nil {
			result.Summary.TotalFiles++
			result.Summary.Failed++
			result.Errors = append(result.Errors, docsysSvc.ImportError{
				File:  file.Filename,
				Error: err.Error(),
			})
			s.logger.Warn("import file failed", "filename", file.Filename, "error", err)
			continue
		}
		result.Merge(processed)
	}

	s.logger.Info("import complete",
		"owner_id", ownerID,
		"parent_id", parentID,
		"files", len(files),
		"created", result.Summary.Created,
		"updated", result.Summary.Updated,
		"skipped", result.Summary.Skipped,
		"failed", result.Summary.Failed,
	)
	return result, nil
}
