package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/theopenlane/phishguard/internal/types"
)

// Prompt input limits keep the call within the token and latency budget
const (
	maxPromptHeaderChars  = 1000
	maxPromptBodyChars    = 2000
	maxPromptSnippets     = 3
	maxPromptURLMetadata  = 5
	maxPromptAttachments  = 3
	maxPromptOwnedDomains = 3
)

// systemPrompt instructs the model to act as a Spanish-language
// phishing classifier returning strict JSON
const systemPrompt = `Eres un clasificador de phishing. Combinas señales heurísticas y de contenido para emitir un dictamen claro para personas no técnicas en español neutro. Tu objetivo es minimizar falsos negativos (proteger al usuario): ante duda razonable, eleva la severidad.

Considera: suplantación de identidad, urgencia financiera, solicitud de credenciales o pagos, URLs engañosas (look-alike, sin HTTPS, redirecciones), misalignment SPF/DKIM/DMARC, dominio recién creado, adjuntos inusuales, errores léxicos, spoofing de marca y patrones de ingeniería social. No supongas identidad real del remitente. Ajusta tu razonamiento al budget de latencia.

DEVUELVE SOLO JSON VÁLIDO:

{
  "classification": "phishing|sospechoso|seguro",
  "risk_score": 0-100,
  "top_reasons": ["razón breve 1", "razón breve 2", "razón breve 3"],
  "non_technical_summary": "≤60 palabras, claro y empático",
  "recommended_actions": ["acción 1", "acción 2"],
  "evidence": {
    "header_findings": {"spf_dkim_dmarc": "ok|mismatch|fail", "reply_to_mismatch": false, "display_name_spoof": false},
    "url_findings": [{"url":"...","reason":"..."}],
    "nlp_signals": ["...","..."]
  }
}

Restricciones:
- Si hay señales críticas (URL dudosa, solicitud de credenciales, misalignment DMARC), ELEVA severidad
- Explica por qué una URL es riesgosa (look-alike, sin HTTPS, redirecciones, edad de dominio)
- Mantén non_technical_summary SIN tecnicismos y centrado en qué hacer
- Si evidencia insuficiente → classification="sospechoso" con recomendaciones prudentes
- Nunca devuelvas texto fuera del JSON
- Respeta latency_budget_ms (evita cadenas de razonamiento largas)`

// buildUserPrompt renders the redacted email evidence into the user
// message for the model
func buildUserPrompt(data types.PromptData) string {
	var b strings.Builder

	b.WriteString("Analiza este email:\n\n")

	b.WriteString("HEADERS (redactados):\n")
	b.WriteString(truncate(data.HeadersRaw, maxPromptHeaderChars))
	b.WriteString("\n\n")

	b.WriteString("CONTENIDO:\n")
	b.WriteString(truncate(data.TextBody, maxPromptBodyChars))
	b.WriteString("\n\n")

	b.WriteString("HTML SNIPPETS:\n")
	b.WriteString(marshalList(data.HTMLSnippets, maxPromptSnippets))
	b.WriteString("\n\n")

	b.WriteString("METADATOS DE URLs:\n")
	b.WriteString(marshalList(data.URLMetadata, maxPromptURLMetadata))
	b.WriteString("\n\n")

	b.WriteString("RESUMEN HEURÍSTICO:\n")
	b.WriteString(data.HeuristicSummary)
	b.WriteString("\n\n")

	b.WriteString("ADJUNTOS:\n")
	b.WriteString(describeAttachments(data.AttachmentsMeta))
	b.WriteString("\n\n")

	b.WriteString("CONTEXTO:\n")
	fmt.Fprintf(&b, "Dominios propios: %s\n", marshalList(data.AccountContext.OwnedDomains, maxPromptOwnedDomains))
	fmt.Fprintf(&b, "Remitentes confiables: %d configurados\n", len(data.AccountContext.TrustedSenders))
	fmt.Fprintf(&b, "Locale: %s\n\n", data.AccountContext.UserLocale)

	fmt.Fprintf(&b, "Budget de latencia: %dms\n\n", data.LatencyBudget.Milliseconds())

	b.WriteString("Clasifica y responde SOLO con JSON válido.")

	return b.String()
}

// describeAttachments renders a short attachment inventory line
func describeAttachments(attachments []types.AttachmentMeta) string {
	names := make([]string, 0, min(len(attachments), maxPromptAttachments))

	for _, meta := range attachments[:min(len(attachments), maxPromptAttachments)] {
		names = append(names, fmt.Sprintf("%s (%s)", meta.Filename, meta.Mime))
	}

	return fmt.Sprintf("%d archivos: [%s]", len(attachments), strings.Join(names, ", "))
}

// marshalList renders up to limit items as a JSON array
func marshalList[T any](items []T, limit int) string {
	encoded, err := json.Marshal(items[:min(len(items), limit)])
	if err != nil {
		return "[]"
	}

	return string(encoded)
}

// truncate bounds a string to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
