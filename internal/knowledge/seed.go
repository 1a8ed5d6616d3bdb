package knowledge

import "SignalSage/internal/model"

// Seed returns the built-in knowledge base in a fixed order.
func Seed() []model.KnowledgeEntry {
	return []model.KnowledgeEntry{
		{
			ID:       "basics-001",
			Title:    "What Is Forex Trading",
			Content:  "Forex trading is the exchange of one currency for another. Prices are quoted in pairs such as EUR/USD, where the first currency is the base and the second the quote currency.",
			Category: model.CategoryBasics,
			Keywords: []string{"forex", "currency", "pair", "trading", "valas"},
		},
		{
			ID:       "basics-002",
			Title:    "Reading a Candlestick Chart",
			Content:  "Each candlestick shows the open, high, low and close for one period. A close above the open is bullish, a close below the open is bearish.",
			Category: model.CategoryBasics,
			Keywords: []string{"candlestick", "chart", "ohlc", "candle", "grafik"},
		},
		{
			ID:       "basics-003",
			Title:    "Stocks on the Indonesia Stock Exchange",
			Content:  "Shares listed on the IDX carry a .JK suffix, for example BBCA.JK. Orders are placed in lots of 100 shares and the composite index is IHSG.",
			Category: model.CategoryBasics,
			Keywords: []string{"saham", "stock", "idx", "ihsg", "lot"},
		},
		{
			ID:       "technical-001",
			Title:    "Relative Strength Index (RSI)",
			Content:  "RSI measures momentum on a 0 to 100 scale over 14 periods. Readings above 70 suggest an overbought market and readings below 30 an oversold one.",
			Category: model.CategoryTechnical,
			Keywords: []string{"rsi", "momentum", "overbought", "oversold", "indicator"},
		},
		{
			ID:       "technical-002",
			Title:    "Moving Averages",
			Content:  "A simple moving average smooths price over a window. Price above a rising 20-day average is a sign of an uptrend; below it, a downtrend.",
			Category: model.CategoryTechnical,
			Keywords: []string{"moving average", "sma", "trend", "ema"},
		},
		{
			ID:       "technical-003",
			Title:    "Support and Resistance",
			Content:  "Support is a price level where buying has historically stopped a decline; resistance is where selling has capped a rally. Breaks of these levels often lead to strong moves.",
			Category: model.CategoryTechnical,
			Keywords: []string{"support", "resistance", "breakout", "level"},
		},
		{
			ID:       "risk-001",
			Title:    "Position Sizing and the 2% Rule",
			Content:  "Risk no more than 1 to 2 percent of your account on a single trade. Size the position from the distance between entry and stop loss.",
			Category: model.CategoryRisk,
			Keywords: []string{"risk", "position size", "money management", "lot", "modal"},
		},
		{
			ID:       "risk-002",
			Title:    "Using Stop Loss Orders",
			Content:  "A stop loss closes a losing trade at a predefined price. Place it beyond a technical level rather than at an arbitrary distance, and never widen it once the trade is open.",
			Category: model.CategoryRisk,
			Keywords: []string{"stop loss", "risk", "exit", "cut loss"},
		},
		{
			ID:       "strategy-001",
			Title:    "Essential Trading Tips",
			Content:  "Trade with a written plan, follow the higher timeframe trend, wait for confirmation before entering, and review every trade in a journal.",
			Category: model.CategoryStrategy,
			Keywords: []string{"tips", "trading", "plan", "strategy", "journal"},
		},
		{
			ID:       "strategy-002",
			Title:    "Trend Following",
			Content:  "Trend followers buy pullbacks in uptrends and sell rallies in downtrends. Moving averages and higher highs or lower lows define the trend.",
			Category: model.CategoryStrategy,
			Keywords: []string{"trend", "pullback", "strategy", "trading"},
		},
		{
			ID:       "psychology-001",
			Title:    "Controlling Fear and Greed",
			Content:  "Emotional decisions are the most common cause of losses. Predefine entries, exits and size so that each trade is executed mechanically.",
			Category: model.CategoryPsychology,
			Keywords: []string{"psychology", "emotion", "fear", "greed", "discipline"},
		},
		{
			ID:       "platform-001",
			Title:    "How Signals Are Generated",
			Content:  "Signals combine the latest quote with a 14-period RSI on daily closes. Confidence is capped at 80 and reduced when volume data is missing. Signals are educational, not financial advice.",
			Category: model.CategoryPlatform,
			Keywords: []string{"signal", "confidence", "sinyal", "platform"},
		},
	}
}
