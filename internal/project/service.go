package project

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"writegeist/internal/logging"
	"writegeist/internal/projectdoc"
	"writegeist/internal/textutil"
)

// ErrEmptyUpload is returned when an uploaded project page has no content.
var ErrEmptyUpload = errors.New("uploaded markdown is empty")

// Service serializes all reads and writes of the project page. Merges are
// load-modify-store cycles, so a single mutex keeps concurrent proposals from
// clobbering each other.
type Service struct {
	store  *Store
	marker *Marker
	logger *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewService wires a project service over the given store and sync marker.
func NewService(store *Store, marker *Marker, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		marker: marker,
		logger: logging.NewComponentLogger(logger, "project"),
		now:    time.Now,
	}
}

// Markdown returns the full project page, bootstrapping the skeleton on first
// access.
func (s *Service) Markdown(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// Section returns the named section's content. Absent sections yield an empty
// string.
func (s *Service) Section(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	markdown, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return projectdoc.ExtractSection(markdown, name), nil
}

// SectionInfo summarizes one section for listings.
type SectionInfo struct {
	Name  string `json:"name"`
	Lines int    `json:"lines"`
}

// Sections lists the page's sections in document order with their content
// line counts (leading and trailing blanks excluded).
func (s *Service) Sections(ctx context.Context) ([]SectionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	markdown, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	doc := projectdoc.Parse(markdown)
	sections := doc.Sections()
	infos := make([]SectionInfo, 0, len(sections))
	for _, sec := range sections {
		lines := 0
		if content := doc.Extract(sec.Name); content != "" {
			lines = strings.Count(content, "\n") + 1
		}
		infos = append(infos, SectionInfo{Name: sec.Name, Lines: lines})
	}
	return infos, nil
}

// ApplyProposal merges a proposed content block into the named section.
// Rejected proposals leave the page untouched; accepted ones persist the new
// page and advance the sync marker.
func (s *Service) ApplyProposal(ctx context.Context, section, content string) (projectdoc.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	markdown, err := s.store.Load(ctx)
	if err != nil {
		return projectdoc.Result{}, err
	}

	merged, result := projectdoc.Merge(markdown, section, content)
	if result.Rejected() {
		s.logger.Info("proposal rejected",
			logging.String(logging.FieldSection, result.Section),
			logging.String("rule", string(result.Rule)),
			logging.String("incoming", result.Incoming))
		return result, nil
	}

	if err := s.store.Save(ctx, merged); err != nil {
		return projectdoc.Result{}, err
	}
	if _, err := s.marker.Touch(s.now()); err != nil {
		return projectdoc.Result{}, err
	}
	s.logger.Info("proposal applied",
		logging.String(logging.FieldSection, result.Section),
		logging.String("outcome", string(result.Outcome)))
	return result, nil
}

// Upload replaces the whole project page with normalized markdown.
func (s *Service) Upload(ctx context.Context, markdown string) error {
	normalized := textutil.NormalizeMarkdown(markdown)
	if normalized == "" {
		return ErrEmptyUpload
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, normalized); err != nil {
		return err
	}
	if _, err := s.marker.Touch(s.now()); err != nil {
		return err
	}
	s.logger.Info("project page replaced", logging.Int("bytes", len(normalized)))
	return nil
}

// LastUpdated returns the sync marker value; zero means never updated.
func (s *Service) LastUpdated() int64 {
	return s.marker.Value()
}

// DatabasePath returns the location of the backing database file.
func (s *Service) DatabasePath() string {
	return s.store.Path()
}
