package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Page is a job posting page reduced to text.
type Page struct {
	URL      string
	Platform Platform
	Title    string
	Text     string
	Rendered bool
}

// ImporterOptions configures an Importer.
type ImporterOptions struct {
	HTTP           *Options
	Browser        bool
	BrowserTimeout time.Duration
	// PageTimeout bounds one import independently of the callers' contexts.
	PageTimeout time.Duration
	Logger      zerolog.Logger
}

type renderFunc func(ctx context.Context, url string, timeout time.Duration, log zerolog.Logger) (string, error)

// Importer fetches job posting pages. Concurrent requests for the same URL
// share one fetch.
type Importer struct {
	opts   ImporterOptions
	log    zerolog.Logger
	group  singleflight.Group
	render renderFunc
}

// NewImporter creates an Importer. With Browser set, pages whose text is too
// short or whose platform renders client-side are rendered headlessly.
func NewImporter(opts ImporterOptions) *Importer {
	if opts.HTTP == nil {
		opts.HTTP = DefaultOptions()
	}
	if opts.BrowserTimeout <= 0 {
		opts.BrowserTimeout = DefaultBrowserTimeout
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 2 * DefaultTimeout
	}
	return &Importer{
		opts:   opts,
		log:    opts.Logger.With().Str("component", "fetch").Logger(),
		render: WithBrowser,
	}
}

// Page fetches url and extracts the posting title and text.
func (im *Importer) Page(ctx context.Context, url string) (*Page, error) {
	ch := im.group.DoChan(url, func() (any, error) {
		pageCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), im.opts.PageTimeout)
		defer cancel()
		return im.load(pageCtx, url)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		page := *res.Val.(*Page)
		return &page, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (im *Importer) load(ctx context.Context, url string) (*Page, error) {
	platform := DetectPlatform(url)
	log := im.log.With().Str("url", url).Str("platform", string(platform)).Logger()

	var page *Page
	result, fetchErr := URL(ctx, url, im.opts.HTTP)
	if fetchErr == nil {
		var err error
		page, err = extractPage(url, platform, result.HTML)
		if err != nil {
			return nil, err
		}
		if !im.opts.Browser || (!ShouldUseBrowser(page.Text) && !platform.NeedsBrowser()) {
			log.Debug().Int("chars", len(page.Text)).Msg("fetched page")
			return page, nil
		}
	} else if !im.opts.Browser {
		return nil, fetchErr
	}

	html, err := im.render(ctx, url, im.opts.BrowserTimeout, log)
	if err != nil {
		if page != nil {
			log.Warn().Err(err).Msg("browser rendering failed, using static content")
			return page, nil
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	rendered, err := extractPage(url, platform, html)
	if err != nil {
		return nil, err
	}
	rendered.Rendered = true
	if page != nil && len(page.Text) > len(rendered.Text) {
		return page, nil
	}
	log.Debug().Int("chars", len(rendered.Text)).Msg("rendered page")
	return rendered, nil
}

func extractPage(url string, platform Platform, html string) (*Page, error) {
	text, err := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, err
	}
	title, err := ExtractTitle(html)
	if err != nil {
		return nil, err
	}
	return &Page{URL: url, Platform: platform, Title: title, Text: text}, nil
}
