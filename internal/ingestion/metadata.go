package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
	"time"
)

// Upload describes an uploaded résumé file.
type Upload struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Format      string    `json:"format"`
	Size        int       `json:"size"`
	Hash        string    `json:"hash"`
	ReceivedAt  time.Time `json:"received_at"`
}

// NewUpload describes data received at now.
func NewUpload(filename, contentType string, data []byte, now time.Time) Upload {
	return Upload{
		Filename:    filename,
		ContentType: contentType,
		Format:      DetectFormat(filename, contentType),
		Size:        len(data),
		Hash:        computeHash(data),
		ReceivedAt:  now.UTC(),
	}
}

// ArchiveKey is the object key under which the original file is kept:
// resumes/<yyyy>/<mm>/<sha256><ext>.
func (u Upload) ArchiveKey() string {
	ext := strings.ToLower(path.Ext(u.Filename))
	if ext == "" {
		ext = formatExt[u.Format]
	}
	return path.Join("resumes", u.ReceivedAt.Format("2006"), u.ReceivedAt.Format("01"), u.Hash+ext)
}

var formatExt = map[string]string{
	FormatText:     ".txt",
	FormatMarkdown: ".md",
	FormatPDF:      ".pdf",
	FormatDOCX:     ".docx",
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
