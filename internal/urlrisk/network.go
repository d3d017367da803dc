package urlrisk

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	rdaplib "github.com/openrdap/rdap"

	"github.com/theopenlane/phishguard/internal/types"
)

const (
	// networkCheckCount is the number of parallel network sub-checks;
	// the aggregate budget is split evenly across them
	networkCheckCount = 3
	// maxFollowedRedirects bounds how far the HEAD probe follows a chain
	maxFollowedRedirects = 5
)

// redirectInfo captures the outcome of a HEAD redirect probe
type redirectInfo struct {
	redirects  int
	statusCode int
	finalURL   string
}

// networkChecks runs the redirect, DNS, and registration-age probes in
// parallel under the remaining budget. Every individual failure is
// treated as "unknown" and never aborts the URL's analysis.
func (a *Analyzer) networkChecks(ctx context.Context, raw string, metadata *types.URLMetadata, reasons *[]string, budget time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	perCheck := budget / networkCheckCount

	var (
		redirect   redirectInfo
		redirectOK bool
		resolves   bool
		dnsOK      bool
		ageDays    *int
		wg         sync.WaitGroup
	)

	wg.Add(networkCheckCount)

	go func() {
		defer wg.Done()

		redirect, redirectOK = a.checkRedirects(ctx, raw, perCheck)
	}()

	go func() {
		defer wg.Done()

		resolves, dnsOK = a.checkDNS(ctx, metadata.Domain, perCheck)
	}()

	go func() {
		defer wg.Done()

		ageDays = a.checkRegistrationAge(ctx, metadata.Domain, perCheck)
	}()

	wg.Wait()

	if redirectOK {
		metadata.Redirections = redirect.redirects

		if redirect.statusCode > 0 {
			code := redirect.statusCode
			metadata.ResponseCode = &code
		}

		if redirect.finalURL != "" && redirect.finalURL != raw {
			metadata.FinalURL = redirect.finalURL
		}

		if redirect.redirects > maxRedirectsBeforeFlag {
			*reasons = append(*reasons, "Multiple redirects detected")
		}
	}

	if dnsOK {
		resolved := resolves
		metadata.DomainResolves = &resolved

		if !resolved {
			*reasons = append(*reasons, "Domain does not resolve")
		}
	}

	if ageDays != nil {
		metadata.WhoisAgeDays = ageDays

		if *ageDays < recentDomainAgeDays {
			*reasons = append(*reasons, "Domain registered recently")
		}
	}
}

// checkRedirects issues a HEAD request and counts the redirect chain
func (a *Analyzer) checkRedirects(ctx context.Context, raw string, timeout time.Duration) (redirectInfo, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hops := 0

	// the shared client cannot be used directly: counting hops needs a
	// per-request CheckRedirect
	client := &http.Client{
		Transport: a.httpClient.Transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			hops = len(via)
			if hops >= maxFollowedRedirects {
				return http.ErrUseLastResponse
			}

			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return redirectInfo{}, false
	}

	resp, err := client.Do(req)
	if err != nil {
		return redirectInfo{}, false
	}

	defer resp.Body.Close()

	info := redirectInfo{
		redirects:  hops,
		statusCode: resp.StatusCode,
	}

	if resp.Request != nil && resp.Request.URL != nil {
		final := resp.Request.URL.String()
		if !strings.EqualFold(final, raw) {
			info.finalURL = final
		}
	}

	return info, true
}

// checkDNS reports whether the domain currently resolves. The second
// return is false when the resolver could not be reached at all, which
// leaves the outcome unknown instead of negative.
func (a *Analyzer) checkDNS(ctx context.Context, domain string, timeout time.Duration) (bool, bool) {
	if domain == "" || isIPLiteralHost(domain) {
		return false, false
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := a.dnsClient.ExchangeContext(ctx, msg, a.dnsServer)
	if err != nil || resp == nil {
		return false, false
	}

	return len(resp.Answer) > 0, true
}

// checkRegistrationAge queries RDAP for the domain registration date
// and returns its age in days, or nil when unknown
func (a *Analyzer) checkRegistrationAge(ctx context.Context, domain string, timeout time.Duration) *int {
	if domain == "" || isIPLiteralHost(domain) {
		return nil
	}

	req := &rdaplib.Request{
		Type:    rdaplib.DomainRequest,
		Query:   registrableDomain(domain),
		Timeout: timeout,
	}

	req = req.WithContext(ctx)

	resp, err := a.rdapClient.Do(req)
	if err != nil {
		return nil
	}

	domainObj, ok := resp.Object.(*rdaplib.Domain)
	if !ok || domainObj == nil {
		return nil
	}

	for _, event := range domainObj.Events {
		if !strings.EqualFold(event.Action, "registration") {
			continue
		}

		registered, err := time.Parse(time.RFC3339, event.Date)
		if err != nil {
			continue
		}

		age := int(time.Since(registered).Hours() / 24)

		return &age
	}

	return nil
}
