package calculator

import (
	"testing"

	"SignalSage/internal/model"
)

func TestComputeSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	got, err := ComputeSMA(closes, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %.2f", got)
	}
}

func TestComputeSMA_Errors(t *testing.T) {
	if _, err := ComputeSMA([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := ComputeSMA([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for short series")
	}

	huge := make([]float64, DefaultSMAPeriod)
	for i := range huge {
		huge[i] = 1e308
	}
	if _, err := ComputeSMA(huge, DefaultSMAPeriod); err == nil {
		t.Error("expected error when the SMA sum overflows")
	}
	if _, err := TrendReading(huge, DefaultSMAPeriod); err == nil {
		t.Error("expected trend reading to be skipped on overflow")
	}
}

func TestTrendReading(t *testing.T) {
	up := []float64{1, 2, 3, 4, 10}
	r, err := TrendReading(up, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Signal != model.ActionBuy || r.Name != "SMA3" {
		t.Errorf("expected BUY SMA3, got %s %s", r.Signal, r.Name)
	}

	down := []float64{10, 9, 8, 7, 1}
	r, _ = TrendReading(down, 3)
	if r.Signal != model.ActionSell {
		t.Errorf("expected SELL, got %s", r.Signal)
	}
}

func TestRSIReading(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	r := RSIReading(closes, 14)
	if r.Name != "RSI14" || r.Value != 100 || r.Signal != model.ActionSell {
		t.Errorf("unexpected reading %+v", r)
	}

	short := RSIReading([]float64{1, 2}, 14)
	if short.Value != NeutralRSI || short.Signal != model.ActionHold {
		t.Errorf("expected neutral HOLD reading, got %+v", short)
	}
}
