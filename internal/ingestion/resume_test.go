package ingestion

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        string
	}{
		{"resume.txt", "text/plain; charset=utf-8", FormatText},
		{"resume", "text/markdown", FormatMarkdown},
		{"cv.pdf", "application/pdf", FormatPDF},
		{"cv", docxContentType, FormatDOCX},
		{"cv.PDF", "application/octet-stream", FormatPDF},
		{"notes.md", "", FormatMarkdown},
		{"cv.docx", "", FormatDOCX},
		{"photo.png", "image/png", ""},
		{"cv.doc", "application/msword", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"|"+tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.filename, tt.contentType))
		})
	}
}

func TestExtractResumeText(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        string
		want        string
		wantErr     error
	}{
		{
			name:        "plain text is cleaned",
			filename:    "resume.txt",
			contentType: "text/plain",
			data:        "Jane Doe\r\nSenior    Engineer\r\n\r\n\r\n\r\nGo, Kubernetes  ",
			want:        "Jane Doe\nSenior Engineer\n\nGo, Kubernetes",
		},
		{
			name:     "markdown keeps headings",
			filename: "resume.md",
			data:     "# Jane Doe\n\n- Built APIs",
			want:     "# Jane Doe\n\n- Built APIs",
		},
		{
			name:     "invalid utf-8 dropped",
			filename: "resume.txt",
			data:     "Jane\xff Doe",
			want:     "Jane Doe",
		},
		{
			name:        "unsupported",
			filename:    "photo.png",
			contentType: "image/png",
			data:        "\x89PNG",
			wantErr:     ErrUnsupportedFormat,
		},
		{
			name:     "whitespace only",
			filename: "resume.txt",
			data:     " \n\t\n ",
			wantErr:  ErrNoText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractResumeText(tt.filename, tt.contentType, []byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestExtractResumeText_CorruptBinary(t *testing.T) {
	_, err := ExtractResumeText("cv.pdf", "application/pdf", []byte("not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PDF")

	_, err = ExtractResumeText("cv.docx", "", []byte("not a zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCX")
}

func TestStripDocxXML(t *testing.T) {
	content := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go</w:t><w:tab/><w:t>SQL &amp; NoSQL</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	assert.Equal(t, "Jane Doe\nGo SQL & NoSQL\nLine one\nLine two\n", stripDocxXML(content))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo", 5))
	assert.Equal(t, "hé", Truncate("héllo", 2))
	assert.Equal(t, "", Truncate("", 3))
	assert.Len(t, []rune(Truncate(strings.Repeat("ü", 30), 10)), 10)
}

func TestUpload(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	u := NewUpload("My CV.PDF", "application/pdf", []byte("content"), now)

	assert.Equal(t, FormatPDF, u.Format)
	assert.Equal(t, 7, u.Size)
	assert.Len(t, u.Hash, 64)
	assert.Equal(t, "resumes/2026/03/"+u.Hash+".pdf", u.ArchiveKey())

	same := NewUpload("other.pdf", "application/pdf", []byte("content"), now)
	assert.Equal(t, u.Hash, same.Hash)
	different := NewUpload("other.pdf", "application/pdf", []byte("content2"), now)
	assert.NotEqual(t, u.Hash, different.Hash)

	noExt := NewUpload("resume", "text/markdown", []byte("# x"), now)
	assert.Equal(t, "resumes/2026/03/"+noExt.Hash+".md", noExt.ArchiveKey())
}
