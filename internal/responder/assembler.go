package responder

import (
	"fmt"
	"strings"

	"SignalSage/internal/model"
)

// Assemble renders a chat response from the retrieved context. It has no
// side effects and the result always ends with the disclaimer.
func Assemble(query string, matches []model.KnowledgeMatch, signal *model.Signal, profile model.UserProfile) string {
	t := localeFor(profile.PreferredLanguage)
	var blocks []string

	if signal != nil {
		if signal.Estimated {
			blocks = append(blocks, t.Estimated)
		}
		blocks = append(blocks, marketBlock(t, signal))
	}
	if len(matches) > 0 {
		blocks = append(blocks, knowledgeBlock(t, matches))
	}
	if signal == nil && len(matches) == 0 {
		blocks = append(blocks, fmt.Sprintf(t.NoContext, strings.TrimSpace(query)))
	}
	if profile.ExperienceLevel == model.ExperienceBeginner {
		blocks = append(blocks, t.BeginnerTip)
	}
	blocks = append(blocks, t.Disclaimer)

	return strings.Join(blocks, "\n\n")
}

// Fallback is the response used when the pipeline cannot produce one.
func Fallback(profile model.UserProfile) string {
	t := localeFor(profile.PreferredLanguage)
	return t.Fallback + "\n\n" + t.Disclaimer
}

// Disclaimer returns the disclaimer text for lang.
func Disclaimer(lang model.Language) string {
	return localeFor(lang).Disclaimer
}

func marketBlock(t templates, s *model.Signal) string {
	var b strings.Builder
	b.WriteString(t.MarketHeader)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(t.Price, s.Pair, FormatPrice(s.Price)))
	if len(s.HistoricalData) >= 2 {
		prev := s.HistoricalData[len(s.HistoricalData)-2].Close
		if prev > 0 {
			b.WriteString(fmt.Sprintf(t.Change, (s.Price-prev)/prev*100))
		}
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(t.Signal, s.Signal, s.Confidence))
	for _, r := range s.Indicators {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(t.Indicator, r.Name, r.Value, r.Signal))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(t.Reasoning, s.Reasoning))
	return b.String()
}

func knowledgeBlock(t templates, matches []model.KnowledgeMatch) string {
	var b strings.Builder
	b.WriteString(t.KnowledgeHeader)
	for _, m := range matches {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(t.KnowledgeItem, m.Entry.Title, m.Entry.Content))
	}
	return b.String()
}

// FormatPrice picks a precision suited to the magnitude of p.
func FormatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.6f", p)
	}
}
