package strategy

import (
	"strings"
	"testing"

	"SignalSage/internal/model"
)

func rsi(v float64) []model.IndicatorReading {
	return []model.IndicatorReading{{Name: "RSI14", Value: v, Signal: model.ActionHold}}
}

var withVolume = &model.Quote{Symbol: "AAPL", Price: 190, Volume: 1_000_000}

func TestSynthesize_Regimes(t *testing.T) {
	tests := []struct {
		rsi      float64
		signal   model.Action
		regime   string
		contains string
	}{
		{85, model.ActionSell, "overbought", "overbought"},
		{70.01, model.ActionSell, "overbought", "overbought"},
		{70, model.ActionHold, "bullish", "buy bias"},
		{65, model.ActionHold, "bullish", "buy bias"},
		{60, model.ActionHold, "neutral", "neutral"},
		{50, model.ActionHold, "neutral", "neutral"},
		{40, model.ActionHold, "neutral", "neutral"},
		{35, model.ActionHold, "bearish", "sell bias"},
		{30, model.ActionHold, "bearish", "sell bias"},
		{29.99, model.ActionBuy, "oversold", "oversold"},
		{10, model.ActionBuy, "oversold", "oversold"},
	}
	for _, tt := range tests {
		d := Synthesize(rsi(tt.rsi), withVolume)
		if d.Signal != tt.signal {
			t.Errorf("rsi %.2f: expected %s, got %s", tt.rsi, tt.signal, d.Signal)
		}
		if Regime(tt.rsi) != tt.regime {
			t.Errorf("rsi %.2f: expected regime %s, got %s", tt.rsi, tt.regime, Regime(tt.rsi))
		}
		if !strings.Contains(d.Reasoning, tt.contains) {
			t.Errorf("rsi %.2f: reasoning %q missing %q", tt.rsi, d.Reasoning, tt.contains)
		}
	}
}

func TestSynthesize_Confidence(t *testing.T) {
	tests := []struct {
		rsi  float64
		want int
	}{
		{50, 50},
		{65, 60},
		{35, 60},
		{75, 65},
		{25, 65},
		{80, 80},
		{95, 80},
		{5, 80},
	}
	for _, tt := range tests {
		d := Synthesize(rsi(tt.rsi), withVolume)
		if d.Confidence != tt.want {
			t.Errorf("rsi %.1f: expected confidence %d, got %d", tt.rsi, tt.want, d.Confidence)
		}
	}
}

func TestSynthesize_NoVolumePenalty(t *testing.T) {
	noVol := &model.Quote{Symbol: "EUR/USD", Price: 1.0850}
	d := Synthesize(rsi(80), noVol)
	if d.Confidence != 72 {
		t.Errorf("expected 80*0.9=72, got %d", d.Confidence)
	}
	d = Synthesize(rsi(80), nil)
	if d.Confidence != 72 {
		t.Errorf("expected penalty for missing quote, got %d", d.Confidence)
	}
}

func TestSynthesize_EURUSDScenario(t *testing.T) {
	q := &model.Quote{Symbol: "EUR/USD", Price: 1.0850}
	d := Synthesize(rsi(72.4), q)
	if d.Signal != model.ActionSell {
		t.Fatalf("expected SELL, got %s", d.Signal)
	}
	if d.Confidence < 50 || d.Confidence > 80 {
		t.Errorf("expected confidence in [50,80], got %d", d.Confidence)
	}
	if !strings.Contains(d.Reasoning, "overbought") || !strings.Contains(d.Reasoning, "72.40") {
		t.Errorf("unexpected reasoning: %s", d.Reasoning)
	}
}

func TestSynthesize_Monotonicity(t *testing.T) {
	transitions := 0
	prevSell := false
	prevConf := -1
	for v := 69.0; v <= 100.0; v += 0.1 {
		d := Synthesize(rsi(v), withVolume)
		isSell := d.Signal == model.ActionSell
		if isSell && !prevSell {
			transitions++
		}
		if prevSell && !isSell {
			t.Fatalf("signal left SELL at rsi %.2f", v)
		}
		if v > 70 && prevConf >= 0 && prevSell && d.Confidence < prevConf {
			t.Fatalf("confidence decreased at rsi %.2f: %d < %d", v, d.Confidence, prevConf)
		}
		prevSell = isSell
		prevConf = d.Confidence
	}
	if transitions != 1 {
		t.Errorf("expected exactly one transition into SELL, got %d", transitions)
	}
}

func TestSynthesize_InsufficientData(t *testing.T) {
	d := Synthesize(nil, withVolume)
	if d.Signal != model.ActionHold || d.Confidence != 50 || d.Reasoning != InsufficientData {
		t.Errorf("unexpected decision %+v", d)
	}

	onlySMA := []model.IndicatorReading{{Name: "SMA20", Value: 100, Signal: model.ActionBuy}}
	d = Synthesize(onlySMA, withVolume)
	if d.Reasoning != InsufficientData {
		t.Errorf("expected insufficient data without RSI, got %q", d.Reasoning)
	}
}
