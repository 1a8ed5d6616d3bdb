package notifier

import (
	"fmt"
	"html"
	"strings"

	"SignalSage/internal/model"
	"SignalSage/internal/responder"
)

var actionIcons = map[model.Action]string{
	model.ActionBuy:  "🟢",
	model.ActionSell: "🔴",
	model.ActionHold: "⚪",
}

// FormatSignal renders a signal as a Telegram HTML message.
func FormatSignal(sig *model.Signal) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n\n", actionIcons[sig.Signal], html.EscapeString(sig.Pair), sig.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Price: %s\n", responder.FormatPrice(sig.Price)))
	b.WriteString(fmt.Sprintf("Signal: <b>%s</b> (confidence %d%%)\n", sig.Signal, sig.Confidence))
	for _, r := range sig.Indicators {
		b.WriteString(fmt.Sprintf("  %s: %.2f → %s\n", r.Name, r.Value, r.Signal))
	}
	b.WriteString(fmt.Sprintf("\n%s\n", html.EscapeString(sig.Reasoning)))
	if sig.Estimated {
		b.WriteString("\n⚠️ <i>Based on estimated history</i>\n")
	}
	b.WriteString(disclaimer())
	return b.String()
}

// FormatSignalChange renders an alert for a pair whose action flipped.
func FormatSignalChange(sig *model.Signal, previous model.Action) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>Signal change</b>: %s → %s\n\n", previous, sig.Signal))
	b.WriteString(FormatSignal(sig))
	return b.String()
}

// FormatWatchlist renders a one-line-per-pair summary.
func FormatWatchlist(sigs []*model.Signal) string {
	if len(sigs) == 0 {
		return "📋 Watchlist is empty"
	}
	var b strings.Builder
	b.WriteString("📋 <b>Watchlist</b>\n\n")
	for _, s := range sigs {
		b.WriteString(fmt.Sprintf("%s %s  %s  %s (%d%%)\n",
			actionIcons[s.Signal], html.EscapeString(s.Pair), responder.FormatPrice(s.Price), s.Signal, s.Confidence))
	}
	b.WriteString(disclaimer())
	return b.String()
}

func disclaimer() string {
	return "\n<i>" + html.EscapeString(responder.Disclaimer(model.LanguageEnglish)) + "</i>"
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /signal &lt;pair&gt; - signal for a pair, e.g. /signal EUR/USD\n" +
		"• /watchlist - latest signals for the watchlist\n" +
		"• anything else is answered as a chat question"
}
