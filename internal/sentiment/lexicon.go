package sentiment

// Word polarities in [-1, 1], tuned for market news. Words carry their
// strength; intensifiers and negators adjust the next scored word.
var lexicon = map[string]float64{
	// positive
	"achieve": 0.4, "achieved": 0.4, "beat": 0.5, "beats": 0.5, "benefit": 0.4,
	"better": 0.5, "boom": 0.6, "boost": 0.5, "boosted": 0.5, "breakthrough": 0.7,
	"bullish": 0.7, "competitive": 0.3, "delight": 0.7, "enhance": 0.4,
	"excellent": 1.0, "exceptional": 0.8, "expand": 0.3, "expansion": 0.3,
	"favorable": 0.5, "gain": 0.5, "gains": 0.5, "good": 0.7, "great": 0.8,
	"grew": 0.4, "growth": 0.5, "high": 0.2, "higher": 0.3, "improve": 0.5,
	"improved": 0.5, "improvement": 0.5, "innovation": 0.4, "innovative": 0.5,
	"jump": 0.4, "jumps": 0.4, "leader": 0.4, "leading": 0.3, "opportunity": 0.4,
	"optimistic": 0.6, "outperform": 0.6, "positive": 0.5, "profit": 0.4,
	"profitable": 0.6, "progress": 0.4, "prosper": 0.6, "rally": 0.6,
	"rallies": 0.6, "record": 0.5, "recover": 0.4, "recovery": 0.4,
	"remarkable": 0.75, "rise": 0.4, "rises": 0.4, "robust": 0.6, "soar": 0.7,
	"soars": 0.7, "solid": 0.4, "strength": 0.5, "strong": 0.45, "stronger": 0.5,
	"succeed": 0.6, "success": 0.6, "successful": 0.75, "superior": 0.7,
	"surge": 0.6, "surges": 0.6, "surpass": 0.5, "top": 0.5, "tremendous": 0.8,
	"upbeat": 0.6, "upgrade": 0.5, "upgraded": 0.5, "valuable": 0.5, "win": 0.6,
	"winning": 0.5, "wins": 0.6,

	// negative
	"abandon": -0.5, "adverse": -0.6, "bad": -0.7, "bankrupt": -0.9,
	"bankruptcy": -0.9, "bearish": -0.7, "challenge": -0.3, "challenging": -0.4,
	"collapse": -0.8, "concern": -0.4, "concerns": -0.4, "crash": -0.8,
	"crisis": -0.7, "cut": -0.3, "cuts": -0.3, "damage": -0.6, "decline": -0.5,
	"declines": -0.5, "decrease": -0.4, "deficit": -0.5, "deteriorate": -0.6,
	"difficult": -0.5, "disappoint": -0.6, "disappointing": -0.6,
	"downgrade": -0.5, "downgraded": -0.5, "downturn": -0.6, "drop": -0.4,
	"drops": -0.4, "fail": -0.6, "failed": -0.6, "failure": -0.7, "falling": -0.4,
	"falls": -0.4, "fear": -0.6, "fears": -0.6, "fraud": -0.9, "headwind": -0.4,
	"impairment": -0.5, "lawsuit": -0.5, "layoffs": -0.6, "lose": -0.5,
	"loss": -0.5, "losses": -0.5, "lower": -0.3, "miss": -0.5, "misses": -0.5,
	"negative": -0.5, "plunge": -0.8, "plunges": -0.8, "poor": -0.6,
	"probe": -0.4, "problem": -0.5, "recall": -0.4, "recession": -0.7,
	"risk": -0.3, "risks": -0.3, "scandal": -0.8, "selloff": -0.6, "slow": -0.3,
	"slowdown": -0.5, "slump": -0.7, "slumps": -0.7, "tumble": -0.7,
	"tumbles": -0.7, "uncertain": -0.3, "uncertainty": -0.3,
	"underperform": -0.6, "unfavorable": -0.5, "unprofitable": -0.6,
	"volatile": -0.3, "weak": -0.5, "weaker": -0.5, "weakness": -0.5,
	"worse": -0.7, "worsen": -0.6, "worst": -1.0,
	"fall": -0.4, "short": -0.3, "shortfall": -0.5, "sink": -0.6, "warn": -0.5,
	"warning": -0.5, "climb": 0.4, "exceed": 0.5, "outpace": 0.4,
}

// irregular maps past forms that suffix stripping cannot reach.
var irregular = map[string]string{
	"fell": "fall", "fallen": "fall", "rose": "rise", "risen": "rise",
	"sank": "sink", "sunk": "sink", "won": "win", "lost": "lose",
	"grown": "growth", "beaten": "beat", "undercut": "cut",
}

// inflections are tried longest first.
var inflections = []string{"ing", "ed", "es", "s", "d"}

var intensifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "highly": 1.3, "sharply": 1.4,
	"significantly": 1.3, "hugely": 1.5, "strongly": 1.3, "deeply": 1.3,
	"slightly": 0.5, "somewhat": 0.6, "marginally": 0.5, "modestly": 0.6,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true, "nor": true,
	"without": true, "hardly": true, "barely": true, "cannot": true,
}

// negationScale is applied to a negated word's polarity.
const negationScale = -0.5

// negationWindow is how many tokens a negator reaches forward.
const negationWindow = 3
