package emailauth

import (
	"net/mail"
	"strings"

	"github.com/theopenlane/phishguard/internal/types"
)

// Per-mechanism authentication statuses parsed from header text
const (
	statusPass     = "pass"
	statusFail     = "fail"
	statusSoftfail = "softfail"
	statusNeutral  = "neutral"
	statusNone     = "none"
)

// parseSPF extracts the SPF verdict. Authentication-Results takes
// precedence over Received-SPF when both are present.
func parseSPF(header mail.Header) string {
	authResults := strings.ToLower(header.Get("Authentication-Results"))
	receivedSPF := strings.ToLower(header.Get("Received-SPF"))

	switch {
	case strings.Contains(authResults, "spf=pass"):
		return statusPass
	case strings.Contains(authResults, "spf=fail"):
		return statusFail
	case strings.Contains(authResults, "spf=softfail"):
		return statusSoftfail
	case strings.Contains(authResults, "spf=neutral"):
		return statusNeutral
	}

	if receivedSPF != "" {
		if strings.Contains(receivedSPF, "pass") {
			return statusPass
		}

		if strings.Contains(receivedSPF, "fail") {
			return statusFail
		}
	}

	return statusNone
}

// parseDKIM extracts the DKIM verdict from Authentication-Results,
// falling back to the bare presence of a DKIM-Signature header.
func parseDKIM(header mail.Header) string {
	authResults := strings.ToLower(header.Get("Authentication-Results"))
	signature := header.Get("DKIM-Signature")

	switch {
	case strings.Contains(authResults, "dkim=pass"):
		return statusPass
	case strings.Contains(authResults, "dkim=fail"):
		return statusFail
	case signature != "":
		// a signature without a verdict is unverified, not failed
		return statusNeutral
	}

	return statusNone
}

// parseDMARC extracts the DMARC verdict; only pass and fail are
// distinguished, anything else is treated as none.
func parseDMARC(header mail.Header) string {
	authResults := strings.ToLower(header.Get("Authentication-Results"))

	switch {
	case strings.Contains(authResults, "dmarc=pass"):
		return statusPass
	case strings.Contains(authResults, "dmarc=fail"):
		return statusFail
	}

	return statusNone
}

// combineAuthStatus folds the per-mechanism verdicts into the overall
// status. DMARC failure dominates; double SPF+DKIM failure is a hard
// fail; an aligned pass is ok; a single failure is a mismatch.
func combineAuthStatus(spf, dkim, dmarc string) types.AuthStatus {
	switch {
	case dmarc == statusFail:
		return types.AuthStatusFail
	case spf == statusFail && dkim == statusFail:
		return types.AuthStatusFail
	case (spf == statusPass || spf == statusNeutral) && dkim == statusPass:
		return types.AuthStatusOK
	case spf == statusFail || dkim == statusFail:
		return types.AuthStatusMismatch
	default:
		return types.AuthStatusOK
	}
}
