package responder

import "SignalSage/internal/model"

// templates holds every user-facing string for one language.
type templates struct {
	Estimated       string
	MarketHeader    string
	Price           string // symbol, price
	Change          string // change percent
	Signal          string // action, confidence
	Indicator       string // name, value, direction
	Reasoning       string // reasoning
	KnowledgeHeader string
	KnowledgeItem   string // title, content
	NoContext       string // query
	BeginnerTip     string
	Disclaimer      string
	Fallback        string
}

var locales = map[model.Language]templates{
	model.LanguageEnglish: {
		Estimated:       "⚠️ Live history was unavailable, so the indicators below use estimated data. Treat this signal with extra caution.",
		MarketHeader:    "📊 Market analysis",
		Price:           "%s is trading at %s",
		Change:          " (%+.2f%% today)",
		Signal:          "Signal: %s, confidence %d%%",
		Indicator:       "• %s: %.2f (%s)",
		Reasoning:       "Why: %s",
		KnowledgeHeader: "📚 From the knowledge base",
		KnowledgeItem:   "• %s: %s",
		NoContext:       "I couldn't find anything specific about \"%s\". Try asking about RSI, risk management, or a pair such as EUR/USD.",
		BeginnerTip:     "💡 Beginner tip: start on a demo account, risk at most 1-2% per trade and always set a stop loss.",
		Disclaimer:      "Disclaimer: this information is for educational purposes only and is not financial advice. Trading involves significant risk of loss.",
		Fallback:        "Sorry, I'm experiencing technical difficulties right now. Please try again in a moment.",
	},
	model.LanguageIndonesian: {
		Estimated:       "⚠️ Data historis langsung tidak tersedia, sehingga indikator di bawah memakai data estimasi. Gunakan sinyal ini dengan ekstra hati-hati.",
		MarketHeader:    "📊 Analisis pasar",
		Price:           "%s diperdagangkan di %s",
		Change:          " (%+.2f%% hari ini)",
		Signal:          "Sinyal: %s, keyakinan %d%%",
		Indicator:       "• %s: %.2f (%s)",
		Reasoning:       "Alasan: %s",
		KnowledgeHeader: "📚 Dari basis pengetahuan",
		KnowledgeItem:   "• %s: %s",
		NoContext:       "Saya tidak menemukan informasi spesifik tentang \"%s\". Coba tanyakan tentang RSI, manajemen risiko, atau pasangan seperti EUR/USD.",
		BeginnerTip:     "💡 Tips pemula: mulai dengan akun demo, risiko maksimal 1-2% per transaksi dan selalu pasang stop loss.",
		Disclaimer:      "Disclaimer: informasi ini hanya untuk edukasi dan bukan saran keuangan. Trading memiliki risiko kerugian yang signifikan.",
		Fallback:        "Maaf, sedang terjadi gangguan teknis. Silakan coba lagi sebentar lagi.",
	},
}

func localeFor(lang model.Language) templates {
	if t, ok := locales[lang]; ok {
		return t
	}
	return locales[model.LanguageEnglish]
}
