package blocklist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// domainSet is the in-memory index of blocklisted domains
type domainSet map[string]struct{}

func newDomainSet() domainSet {
	return make(domainSet)
}

// ingestFile reads a downloaded feed file line by line and adds every
// parseable domain to the set, returning the number of new entries.
func (s domainSet) ingestFile(path string) (int, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)

	// some feeds ship very long lines
	const maxCapacity = 2 * 1024 * 1024
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	var added int

	for scanner.Scan() {
		domain := parseDomain(scanner.Text())
		if domain == "" {
			continue
		}

		if _, exists := s[domain]; !exists {
			s[domain] = struct{}{}
			added++
		}
	}

	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("scan %s: %w", path, err)
	}

	return added, nil
}

// contains walks the domain and its parent domains down to two labels,
// so a listing of evil.com also covers login.evil.com.
func (s domainSet) contains(domain string) bool {
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")

	for domain != "" && strings.Count(domain, ".") >= 1 {
		if _, ok := s[domain]; ok {
			return true
		}

		idx := strings.Index(domain, ".")
		domain = domain[idx+1:]
	}

	return false
}
