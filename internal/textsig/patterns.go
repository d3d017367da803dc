package textsig

import "regexp"

// urgencyPatterns are time-pressure phrasings in Spanish and English;
// the urgency score is the fraction of these families present
var urgencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:urgente|inmediato|rápido|ahora|ya|pronto)\b`),
	regexp.MustCompile(`(?i)\b(?:caduca|expira|vence|suspender|cancelar)\b`),
	regexp.MustCompile(`(?i)\b(?:últimas? \d+ horas?|dentro de \d+ días?)\b`),
	regexp.MustCompile(`(?i)\b(?:acción requerida|acción inmediata)\b`),
	regexp.MustCompile(`(?i)\b(?:urgent|immediate|asap|right now|quickly)\b`),
	regexp.MustCompile(`(?i)\b(?:expires?|suspend|cancel|terminate)\b`),
	regexp.MustCompile(`(?i)\b(?:within \d+ (?:hours?|days?)|last \d+ hours?)\b`),
	regexp.MustCompile(`(?i)\b(?:action required|immediate action)\b`),
}

// timeSensitivePatterns add half a match each on top of the urgency
// families
var timeSensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:hoy|today|now|ahora)\b`),
	regexp.MustCompile(`(?i)\b\d+\s*(?:hours?|horas?|minutos?|minutes?)\b`),
	regexp.MustCompile(`(?i)\b(?:expir|caduc|venc)\w*\b`),
}

// credentialPatterns detect requests for login data or credential entry
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:contraseña|clave|password|pin|código)\b`),
	regexp.MustCompile(`(?i)\b(?:verificar|confirmar|actualizar|validar)\s+(?:cuenta|datos|información)\b`),
	regexp.MustCompile(`(?i)\b(?:ingresar|introducir|proporcionar)\s+(?:sus?\s+)?(?:datos|credenciales)\b`),
	regexp.MustCompile(`(?i)\b(?:hacer\s+)?(?:clic|click)\s+(?:aquí|abajo|en\s+el\s+enlace)\b`),
	regexp.MustCompile(`(?i)\b(?:password|username|login|credentials|pin|security code)\b`),
	regexp.MustCompile(`(?i)\b(?:verify|confirm|update|validate)\s+(?:account|information|details)\b`),
	regexp.MustCompile(`(?i)\b(?:enter|provide|submit)\s+(?:your\s+)?(?:password|details|information)\b`),
	regexp.MustCompile(`(?i)\bclick\s+(?:here|below|the\s+link)\b`),
}

// credentialWords and credentialActionWords back up the patterns: one
// word from each list pairing in the same message counts as a request
var (
	credentialWords       = []string{"password", "contraseña", "login", "verify", "verificar"}
	credentialActionWords = []string{"click", "clic", "enter", "provide", "confirmar"}
)

// paymentPatterns detect requests for money or banking details
var paymentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:pagar|pago|transferir|dinero|euros?|dólares?)\b`),
	regexp.MustCompile(`(?i)\b(?:tarjeta\s+de\s+crédito|número\s+de\s+tarjeta)\b`),
	regexp.MustCompile(`(?i)\b(?:cuenta\s+bancaria|datos\s+bancarios)\b`),
	regexp.MustCompile(`(?i)\b(?:multa|deuda|cobro|factura)\b`),
	regexp.MustCompile(`(?i)\b(?:pay|payment|transfer|money|dollar|euro)\b`),
	regexp.MustCompile(`(?i)\b(?:credit\s+card|card\s+number|banking\s+details)\b`),
	regexp.MustCompile(`(?i)\b(?:bank\s+account|account\s+number)\b`),
	regexp.MustCompile(`(?i)\b(?:fine|debt|charge|invoice|bill)\b`),
}

var (
	financialWords     = []string{"bank", "card", "payment", "money", "banco", "tarjeta", "pago"}
	paymentActionWords = []string{"update", "verify", "confirm", "provide", "actualizar", "verificar"}
)

// lexicalErrorPatterns are grammar slips typical of non-native scam
// copy: dropped articles, broken verb forms, Spanish verbs in English
// sentences, number disagreements
var lexicalErrorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:go\s+to\s+bank|visit\s+bank|contact\s+bank)\b`),
	regexp.MustCompile(`(?i)\b(?:we\s+was|you\s+was|it\s+were)\b`),
	regexp.MustCompile(`(?i)\b(?:have\s+went|has\s+went|had\s+went)\b`),
	regexp.MustCompile(`(?i)\b(?:assistir|confirme|verifique)\b`),
	regexp.MustCompile(`(?i)\b(?:a\s+informations?|an\s+informations?)\b`),
	regexp.MustCompile(`(?i)\b(?:this\s+datas?|these\s+data)\b`),
}

var (
	repeatedPunctuationPattern = regexp.MustCompile(`[!?]{2,}`)
	allCapsWordPattern         = regexp.MustCompile(`\b[A-Z]{4,}\b`)
	tightPunctuationPattern    = regexp.MustCompile(`\w[!?,;:]\w`)
)

// language indicator patterns back the mixing check: simultaneous
// heavy presence of both sides is a scam tell
var (
	spanishIndicatorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:el|la|los|las|un|una|de|del|por|para|con|sin|este|esta|que)\b`),
		regexp.MustCompile(`(?i)\b(?:señor|señora|estimado|gracias|saludos)\b`),
	}
	englishIndicatorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:the|and|you|your|this|that|with|from|dear|thank|regards)\b`),
		regexp.MustCompile(`(?i)\b(?:account|service|information|security|update)\b`),
	}
)

// defaultBrandEntities are impersonation targets: financial
// institutions, tech companies, and government agencies
var defaultBrandEntities = []string{
	"paypal",
	"amazon",
	"ebay",
	"mercadolibre",
	"santander",
	"bbva",
	"caixabank",
	"ing",
	"scotia",
	"citibank",
	"hsbc",
	"chase",
	"microsoft",
	"apple",
	"google",
	"facebook",
	"netflix",
	"spotify",
	"adobe",
	"zoom",
	"hacienda",
	"irs",
	"social security",
	"seguridad social",
}

// threatPatterns detect account-threat phrasing in both languages
var threatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:cuenta\s+suspendida|acceso\s+bloqueado)\b`),
	regexp.MustCompile(`(?i)\b(?:actividad\s+sospechosa|intento\s+no\s+autorizado)\b`),
	regexp.MustCompile(`(?i)\b(?:verificación\s+(?:requerida|necesaria)|confirmar\s+identidad)\b`),
	regexp.MustCompile(`(?i)\b(?:account\s+suspended|access\s+blocked)\b`),
	regexp.MustCompile(`(?i)\b(?:suspicious\s+activity|unauthorized\s+attempt)\b`),
	regexp.MustCompile(`(?i)\b(?:verification\s+(?:required|needed)|confirm\s+identity)\b`),
}

// additionalThreatPhrases are literal phrases checked on top of the
// threat patterns
var additionalThreatPhrases = []string{
	"cuenta bloqueada",
	"account blocked",
	"suspended",
	"verificación requerida",
	"verification required",
	"actividad sospechosa",
	"suspicious activity",
}

var (
	htmlEntityPattern = regexp.MustCompile(`&[a-zA-Z0-9#]+;`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)
