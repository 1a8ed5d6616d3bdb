package notifier

import (
	"strings"
	"testing"
	"time"

	"SignalSage/internal/model"
	"SignalSage/internal/responder"
)

func sampleSignal() *model.Signal {
	return &model.Signal{
		Pair:       "EUR/USD",
		Signal:     model.ActionSell,
		Confidence: 51,
		Price:      1.0870,
		Reasoning:  "RSI 72.40 > 70 & price above SMA",
		Indicators: []model.IndicatorReading{
			{Name: "RSI(14)", Value: 72.4, Signal: model.ActionSell},
		},
		GeneratedAt: time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatSignal(t *testing.T) {
	msg := FormatSignal(sampleSignal())
	for _, want := range []string{
		"🔴 <b>EUR/USD</b> | 2025-01-06 09:30",
		"Price: 1.0870",
		"<b>SELL</b> (confidence 51%)",
		"RSI(14): 72.40 → SELL",
		"RSI 72.40 &gt; 70 &amp; price above SMA",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "estimated") {
		t.Error("unexpected estimated note")
	}
	if !strings.HasSuffix(msg, "<i>"+responder.Disclaimer(model.LanguageEnglish)+"</i>") {
		t.Errorf("expected trailing disclaimer in:\n%s", msg)
	}
}

func TestFormatSignal_Estimated(t *testing.T) {
	sig := sampleSignal()
	sig.Estimated = true
	if !strings.Contains(FormatSignal(sig), "estimated history") {
		t.Error("expected estimated note")
	}
}

func TestFormatSignalChange(t *testing.T) {
	msg := FormatSignalChange(sampleSignal(), model.ActionHold)
	if !strings.HasPrefix(msg, "🔔 <b>Signal change</b>: HOLD → SELL") {
		t.Errorf("unexpected header:\n%s", msg)
	}
}

func TestFormatWatchlist(t *testing.T) {
	if got := FormatWatchlist(nil); !strings.Contains(got, "empty") {
		t.Errorf("expected empty note, got %q", got)
	}
	buy := sampleSignal()
	buy.Pair, buy.Signal, buy.Price, buy.Confidence = "BTC/USD", model.ActionBuy, 64000, 62
	msg := FormatWatchlist([]*model.Signal{sampleSignal(), buy})
	if !strings.Contains(msg, "🔴 EUR/USD  1.0870  SELL (51%)") {
		t.Errorf("missing EUR/USD line:\n%s", msg)
	}
	if !strings.Contains(msg, "🟢 BTC/USD  64000.00  BUY (62%)") {
		t.Errorf("missing BTC/USD line:\n%s", msg)
	}
	if !strings.Contains(msg, "not financial advice") {
		t.Errorf("expected disclaimer in watchlist:\n%s", msg)
	}
}
