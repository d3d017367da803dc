package emailauth

import (
	"net/mail"
	"regexp"
	"strings"
)

// brandPattern pairs a look-alike regex for a brand name with the
// domains legitimately allowed to send mail on its behalf.
type brandPattern struct {
	// Name identifies the brand
	Name string
	// Pattern matches the brand and its common look-alike spellings
	Pattern *regexp.Regexp
	// LegitimateDomains is the sending-domain allowlist for this brand
	LegitimateDomains []string
}

// defaultBrandPatterns covers brands commonly impersonated in phishing
// campaigns, including leetspeak and spacing variants.
var defaultBrandPatterns = []brandPattern{
	{
		Name:              "paypal",
		Pattern:           regexp.MustCompile(`paypal|payp4l|payp al`),
		LegitimateDomains: []string{"paypal.com", "paypal.es", "paypal.mx"},
	},
	{
		Name:              "amazon",
		Pattern:           regexp.MustCompile(`amazon|amazom|am4zon`),
		LegitimateDomains: []string{"amazon.com", "amazon.es", "amazon.mx"},
	},
	{
		Name:              "microsoft",
		Pattern:           regexp.MustCompile(`microsoft|microsft|micr0soft`),
		LegitimateDomains: []string{"microsoft.com", "outlook.com", "hotmail.com"},
	},
	{
		Name:              "apple",
		Pattern:           regexp.MustCompile(`apple|appl3|app1e`),
		LegitimateDomains: []string{"apple.com", "icloud.com"},
	},
	{
		Name:              "google",
		Pattern:           regexp.MustCompile(`google|g00gle|goog1e`),
		LegitimateDomains: []string{"google.com", "gmail.com", "googlemail.com"},
	},
	{
		Name:              "facebook",
		Pattern:           regexp.MustCompile(`facebook|faceb00k|f4cebook`),
		LegitimateDomains: []string{"facebook.com", "facebookmail.com"},
	},
	{
		Name:              "netflix",
		Pattern:           regexp.MustCompile(`netflix|netfl1x|n3tflix`),
		LegitimateDomains: []string{"netflix.com"},
	},
	{
		Name:              "banking",
		Pattern:           regexp.MustCompile(`banco|bank|santander|bbva|scotia`),
		LegitimateDomains: []string{"santander.com", "bancosantander.es", "bbva.es", "scotiabank.com"},
	},
}

// checkReplyToMismatch reports whether Reply-To points somewhere other
// than the From address. True only when both addresses parse, differ,
// and belong to different domains.
func checkReplyToMismatch(from, replyTo string) bool {
	if from == "" || replyTo == "" {
		return false
	}

	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return false
	}

	replyAddr, err := mail.ParseAddress(replyTo)
	if err != nil {
		return false
	}

	fromEmail := strings.ToLower(fromAddr.Address)
	replyEmail := strings.ToLower(replyAddr.Address)

	if fromEmail == "" || replyEmail == "" || fromEmail == replyEmail {
		return false
	}

	return addressDomain(fromEmail) != addressDomain(replyEmail)
}

// checkDisplayNameSpoof reports whether the From display name matches a
// known brand while the sending domain is not on that brand's allowlist
func (a *Analyzer) checkDisplayNameSpoof(from string) bool {
	if from == "" {
		return false
	}

	addr, err := mail.ParseAddress(from)
	if err != nil || addr.Name == "" {
		return false
	}

	displayName := strings.ToLower(addr.Name)
	domain := addressDomain(strings.ToLower(addr.Address))

	for _, brand := range a.brands {
		if !brand.Pattern.MatchString(displayName) {
			continue
		}

		if domain == "" || !isAllowlistedDomain(domain, brand.LegitimateDomains) {
			return true
		}
	}

	return false
}

// isAllowlistedDomain reports whether domain is one of, or a subdomain
// of, the allowlisted domains
func isAllowlistedDomain(domain string, allowlist []string) bool {
	for _, legit := range allowlist {
		if domain == legit || strings.HasSuffix(domain, "."+legit) {
			return true
		}
	}

	return false
}

// addressDomain returns the domain part of an email address
func addressDomain(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}

	return address[at+1:]
}
