package docsystem

import (
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
)

// FileProcessorRegistry picks the processor for an uploaded file. Processors
// are consulted in registration order and the first one that accepts the
// filename wins, so archives must be registered ahead of the catch-all.
type FileProcessorRegistry struct {
	processors []docsysSvc.FileProcessor
}

// NewFileProcessorRegistry returns a registry holding processors in order.
func NewFileProcessorRegistry(processors ...docsysSvc.FileProcessor) *FileProcessorRegistry {
	return &FileProcessorRegistry{processors: processors}
}

// Register appends a processor. Not safe to call once imports are running.
func (r *FileProcessorRegistry) Register(processor docsysSvc.FileProcessor) {
	r.processors = append(r.processors, processor)
}

// GetProcessor returns the processor for filename, or nil.
func (r *FileProcessorRegistry) GetProcessor(filename string) docsysSvc.FileProcessor {
	for _, p := range r.processors {
		if p.CanProcess(filename) {
			return p
		}
	}
	return nil
}

// Names lists the registered processors in order.
func (r *FileProcessorRegistry) Names() []string {
	names := make([]string, len(r.processors))
	for i, p := range r.processors {
		names[i] = p.Name()
	}
	return names
}
