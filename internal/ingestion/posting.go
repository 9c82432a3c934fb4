package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/fetch"
)

// MaxDescriptionRunes caps an imported job description.
const MaxDescriptionRunes = 20000

// ErrEmptyPosting is returned when a fetched page has no usable text.
var ErrEmptyPosting = errors.New("job posting has no readable text")

// PageFetcher loads a job posting page. *fetch.Importer satisfies it.
type PageFetcher interface {
	Page(ctx context.Context, url string) (*fetch.Page, error)
}

// JobPosting is an imported job posting.
type JobPosting struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
	URL         string `json:"url"`
}

// ImportJobPosting fetches url and returns its title and cleaned description.
func ImportJobPosting(ctx context.Context, pages PageFetcher, url string) (*JobPosting, error) {
	page, err := pages.Page(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to import job posting: %w", err)
	}

	description := Truncate(CleanText(page.Text), MaxDescriptionRunes)
	if description == "" {
		return nil, ErrEmptyPosting
	}

	return &JobPosting{
		Title:       strings.TrimSpace(page.Title),
		Description: description,
		Platform:    string(page.Platform),
		URL:         page.URL,
	}, nil
}
