package indicator

import (
	"fmt"

	"vibe-stock-dashboard/internal/types"
)

// RecommendRSI maps an RSI reading onto a buy/sell signal.
// Boundaries: below 30 strong-buy, [30,40) mild-buy, [40,60] neutral,
// (60,70] mild-sell, above 70 strong-sell.
func RecommendRSI(rsi float64) types.Recommendation {
	switch {
	case rsi < 30:
		return types.Recommendation{Signal: types.SignalStrongBuy,
			Text: fmt.Sprintf("RSI %.1f: oversold, strong buy signal", rsi)}
	case rsi < 40:
		return types.Recommendation{Signal: types.SignalMildBuy,
			Text: fmt.Sprintf("RSI %.1f: approaching oversold, consider buying", rsi)}
	case rsi <= 60:
		return types.Recommendation{Signal: types.SignalNeutral,
			Text: fmt.Sprintf("RSI %.1f: neutral momentum, hold", rsi)}
	case rsi <= 70:
		return types.Recommendation{Signal: types.SignalMildSell,
			Text: fmt.Sprintf("RSI %.1f: approaching overbought, consider taking profit", rsi)}
	default:
		return types.Recommendation{Signal: types.SignalStrongSell,
			Text: fmt.Sprintf("RSI %.1f: overbought, strong sell signal", rsi)}
	}
}

// TrendDiffPercent is the distance of price above (positive) or below the EMA.
func TrendDiffPercent(price, ema float64) float64 {
	if ema == 0 {
		return 0
	}
	return (price - ema) / ema * 100
}

// RecommendTrend maps price against its EMA onto a trend label.
func RecommendTrend(price, ema float64) types.Recommendation {
	diff := TrendDiffPercent(price, ema)
	switch {
	case diff == 0:
		return types.Recommendation{Signal: types.TrendFlat,
			Text: "Price is sitting on the EMA, no clear trend"}
	case diff > 2:
		return types.Recommendation{Signal: types.TrendStrongUp,
			Text: fmt.Sprintf("Price %.2f%% above EMA: strong uptrend", diff)}
	case diff > 0:
		return types.Recommendation{Signal: types.TrendMildUp,
			Text: fmt.Sprintf("Price %.2f%% above EMA: mild uptrend", diff)}
	case diff >= -2:
		return types.Recommendation{Signal: types.TrendMildDown,
			Text: fmt.Sprintf("Price %.2f%% below EMA: mild downtrend", -diff)}
	default:
		return types.Recommendation{Signal: types.TrendStrongDown,
			Text: fmt.Sprintf("Price %.2f%% below EMA: strong downtrend", -diff)}
	}
}
