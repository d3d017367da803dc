package urlrisk

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// attributeURLPattern captures absolute URLs from anchor, image, and
// form attributes in HTML content
var attributeURLPattern = regexp.MustCompile(`(?i)(?:href|src|action)\s*=\s*["']?(https?://[^"'\s>]+)`)

// textURLPattern captures bare URLs from plain text content
var textURLPattern = regexp.MustCompile(`(?i)https?://(?:[-\w.])+(?::\d+)?(?:/(?:[-\w/_.])*(?:\?(?:[-\w&=%.])*)?(?:#(?:[-\w.])*)?)?`)

// extractURLs collects candidate URLs from HTML attributes and plain
// text, deduplicated in first-occurrence order
func extractURLs(htmlContent, textContent string) []string {
	var urls []string

	if htmlContent != "" {
		for _, match := range attributeURLPattern.FindAllStringSubmatch(htmlContent, -1) {
			urls = append(urls, strings.TrimSpace(match[1]))
		}
	}

	if textContent != "" {
		urls = append(urls, textURLPattern.FindAllString(textContent, -1)...)
	}

	return lo.Uniq(urls)
}
