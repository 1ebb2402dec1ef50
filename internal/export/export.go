// Package export renders a finalized project into a document file. The
// renderer only accepts a complete tree: every section finalized, ordinals
// contiguous from zero.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"plume/internal/config"
	"plume/internal/logging"
	"plume/internal/project"
	"plume/internal/sediment"
	"plume/internal/services"
	"plume/internal/workflow"
)

// Format names a supported output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatLaTeX    Format = "latex"
)

// ParseFormat converts a string into a supported Format.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "markdown", "md":
		return FormatMarkdown, true
	case "html":
		return FormatHTML, true
	case "latex", "tex":
		return FormatLaTeX, true
	default:
		return "", false
	}
}

var extensions = map[Format]string{
	FormatMarkdown: ".md",
	FormatHTML:     ".html",
	FormatLaTeX:    ".tex",
}

// Exporter renders finalized projects into the export directory.
type Exporter struct {
	store  *project.Store
	dir    string
	logger *slog.Logger
}

// NewExporter builds an exporter writing into the configured export dir.
func NewExporter(cfg *config.Config, store *project.Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{
		store:  store,
		dir:    cfg.Paths.ExportDir,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// Export validates the document tree and writes the rendered file,
// returning its path.
func (e *Exporter) Export(ctx context.Context, projectID string, format Format) (string, error) {
	ext, ok := extensions[format]
	if !ok {
		return "", services.Wrap(services.ErrValidation, "export", "render",
			fmt.Sprintf("unsupported format %q", format), nil)
	}

	proj, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	sections, err := e.store.SectionsByProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	if err := validateTree(sections); err != nil {
		return "", err
	}

	document := sediment.AssembleDocument(sections)
	var rendered string
	switch format {
	case FormatMarkdown:
		rendered = renderMarkdown(proj, document)
	case FormatHTML:
		rendered = renderHTML(proj, document)
	case FormatLaTeX:
		rendered = renderLaTeX(proj, document)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrInfrastructure, "export", "render", "create export dir", err)
	}
	path := filepath.Join(e.dir, sanitizeFilename(proj.Title)+ext)
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", services.Wrap(services.ErrInfrastructure, "export", "render", "write document", err)
	}

	e.logger.Info("document exported",
		logging.String(logging.FieldProjectID, projectID),
		logging.String("format", string(format)),
		logging.String("path", path))
	return path, nil
}

// validateTree enforces the completeness contract: no unfinalized section,
// no ordinal gaps.
func validateTree(sections []*project.Section) error {
	if len(sections) == 0 {
		return services.Wrap(services.ErrValidation, "export", "render", "project has no sections", nil)
	}
	for i, section := range sections {
		if section.Ordinal != i {
			return services.Wrap(services.ErrValidation, "export", "render",
				fmt.Sprintf("ordinal gap at position %d (section %d has ordinal %d)", i, section.ID, section.Ordinal), nil)
		}
		if section.Status != workflow.SectionFinalized {
			return services.Wrap(services.ErrValidation, "export", "render",
				fmt.Sprintf("section %d (%s) is %s, not finalized", section.ID, section.Title, section.Status), nil)
		}
		if strings.TrimSpace(section.Body) == "" {
			return services.Wrap(services.ErrValidation, "export", "render",
				fmt.Sprintf("section %d (%s) has no content", section.ID, section.Title), nil)
		}
	}
	return nil
}

func sanitizeFilename(title string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, title)
	mapped = strings.Trim(mapped, "-")
	if mapped == "" {
		return "document"
	}
	return strings.ToLower(mapped)
}
