package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html", result.ContentType)
}

func TestURL_InvalidURL(t *testing.T) {
	tests := []string{
		"not-a-valid-url",
		"ftp://example.com/file",
		"https://",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := URL(context.Background(), raw, nil)
			require.Error(t, err)

			var fetchErr *Error
			assert.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), "invalid URL")
		})
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_CustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en-US", r.Header.Get("Accept-Language"))
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{
		UserAgent: "custom-agent",
		Headers:   map[string]string{"Accept-Language": "en-US"},
		Client:    server.Client(),
	})
	require.NoError(t, err)
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		selectors   []string
		noise       []string
		contains    []string
		notContains []string
	}{
		{
			name: "main element strips chrome",
			html: `<html><body>
				<nav>Navigation</nav>
				<main><h1>Main Content</h1><p>This is the important text.</p></main>
				<footer>Footer</footer>
			</body></html>`,
			selectors:   JobPostingSelectors(),
			contains:    []string{"Main Content", "important text"},
			notContains: []string{"Navigation", "Footer"},
		},
		{
			name:      "article element",
			html:      `<html><body><article><h1>Article Title</h1><p>Article body.</p></article></body></html>`,
			selectors: JobPostingSelectors(),
			contains:  []string{"Article Title", "Article body"},
		},
		{
			name:      "fallback to body",
			html:      `<html><body><div>Some content here.</div></body></html>`,
			selectors: JobPostingSelectors(),
			contains:  []string{"Some content here"},
		},
		{
			name: "job description class",
			html: `<html><body>
				<div class="sidebar">Sidebar junk</div>
				<div class="job-description"><h2>Requirements</h2><p>5 years experience in Go</p></div>
			</body></html>`,
			selectors:   JobPostingSelectors(),
			contains:    []string{"Requirements", "5 years experience"},
			notContains: []string{"Sidebar junk"},
		},
		{
			name: "noise selectors removed",
			html: `<html><body><main>
				<p>Build distributed systems.</p>
				<form id="application-form">Upload your resume</form>
				<div class="eeo-statement">Equal opportunity</div>
			</main></body></html>`,
			selectors:   JobPostingSelectors(),
			noise:       PlatformNoiseSelectors(PlatformUnknown),
			contains:    []string{"Build distributed systems"},
			notContains: []string{"Upload your resume", "Equal opportunity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, tt.selectors, tt.noise...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestExtractMainText_CollapsesBlankLines(t *testing.T) {
	text, err := ExtractMainText("<html><body><main><p>  one  </p>\n\n\n<p>two</p></main></body></html>", JobPostingSelectors())
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", text)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "h1 wins",
			html: `<html><head><title>Careers | Acme</title><meta property="og:title" content="OG Title"></head><body><h1> Senior   Go Engineer </h1></body></html>`,
			want: "Senior Go Engineer",
		},
		{
			name: "og title",
			html: `<html><head><title>Careers | Acme</title><meta property="og:title" content="Staff Engineer"></head><body><p>x</p></body></html>`,
			want: "Staff Engineer",
		},
		{
			name: "document title",
			html: `<html><head><title>Data Scientist - Acme</title></head><body></body></html>`,
			want: "Data Scientist - Acme",
		},
		{
			name: "none",
			html: `<html><body><p>no title</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, err := ExtractTitle(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestJobPostingSelectors(t *testing.T) {
	selectors := JobPostingSelectors()
	assert.Contains(t, selectors, ".job-description")
	assert.Contains(t, selectors, "#job-content")
	assert.Contains(t, selectors, "main")
}

func TestShouldUseBrowser(t *testing.T) {
	long := make([]byte, MinContentLength)
	for i := range long {
		long[i] = 'a'
	}

	assert.True(t, ShouldUseBrowser(""))
	assert.True(t, ShouldUseBrowser("   short text   "))
	assert.False(t, ShouldUseBrowser(string(long)))
}
