// Package attachment scores attachment metadata for delivery-vector
// risk. Only metadata is inspected, never attachment content.
package attachment

import (
	"strings"

	"github.com/theopenlane/phishguard/internal/types"
)

// Score weight constants
const (
	weightRiskyExtension = 25
	weightExecutableMIME = 15
	weightOversized      = 5
	weightEmptyFile      = 10
	maxScore             = 100

	// oversizedBytes is the attachment size treated as unusual
	oversizedBytes = 50 * 1024 * 1024
)

// riskyExtensions are file extensions commonly used to deliver malware
var riskyExtensions = []string{
	".exe",
	".scr",
	".bat",
	".cmd",
	".com",
	".pif",
	".zip",
	".rar",
}

// Score computes the attachment risk score (0-100) from the metadata.
// Missing or malformed fields contribute nothing.
func Score(attachments []types.AttachmentMeta) float64 {
	if len(attachments) == 0 {
		return 0
	}

	score := 0.0

	for _, meta := range attachments {
		filename := strings.ToLower(meta.Filename)
		mime := strings.ToLower(meta.Mime)

		if hasRiskyExtension(filename) {
			score += weightRiskyExtension
		}

		if strings.Contains(mime, "executable") || strings.Contains(mime, "application/x-") {
			score += weightExecutableMIME
		}

		switch {
		case meta.Size > oversizedBytes:
			score += weightOversized
		case meta.Size == 0:
			score += weightEmptyFile
		}
	}

	return min(score, maxScore)
}

// hasRiskyExtension reports whether the filename ends in a known
// malware delivery extension
func hasRiskyExtension(filename string) bool {
	for _, ext := range riskyExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}

	return false
}
