package docsystem

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Priya-753/notion-clone/internal/config"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
)

// individualFileProcessor imports one file of any extension the converter
// registry knows.
type individualFileProcessor struct {
	docs       docsysSvc.DocumentService
	converters *converter.ConverterRegistry
	logger     *slog.Logger
}

func NewIndividualFileProcessor(
	docs docsysSvc.DocumentService,
	converters *converter.ConverterRegistry,
	logger *slog.Logger,
) docsysSvc.FileProcessor {
	return &individualFileProcessor{docs: docs, converters: converters, logger: logger}
}

func (p *individualFileProcessor) Name() string { return "individual" }

func (p *individualFileProcessor) CanProcess(filename string) bool {
	return p.converters.GetConverter(filepath.Ext(filename)) != nil
}

// Process imports the file as one document under parentID. Read failures and
// oversized files are recorded in the result, never returned, so the rest of
// the batch still runs.
func (p *individualFileProcessor) Process(
	ctx context.Context,
	ownerID string,
	parentID *string,
	file io.Reader,
	filename string,
	overwrite bool,
) (*docsysSvc.ImportResult, error) {
	w := newFileImporter(p.docs, p.converters, p.logger, ownerID, overwrite)

	content, err := io.ReadAll(io.LimitReader(file, config.MaxImportBytes+1))
	if err == nil && len(content) > config.MaxImportBytes {
		err = fmt.Errorf("file exceeds the %d MiB import limit", config.MaxImportBytes>>20)
	} else if err != nil {
		err = fmt.Errorf("failed to read file: %w", err)
	}
	if err != nil {
		w.result.Summary.TotalFiles++
		w.addError(filename, err.Error())
		return w.result, nil
	}

	w.importFile(ctx, parentID, filename, filename, content)
	p.logger.Debug("file imported",
		"filename", filename,
		"owner_id", ownerID,
		"summary", w.result.Summary,
	)
	return w.result, nil
}
