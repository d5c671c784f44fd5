package indicators

import (
	"github.com/guregu/null/v6"
)

// RSI computes the relative strength index over the trailing size price
// changes using simple means of gains and losses. The first defined row is
// index size, the first row with size real changes behind it.
//
// A window with no losses has an infinite RS and saturates to 100. A window
// with neither gains nor losses has no defined RS and stays null.
func RSI(closes []null.Float, size int) []null.Float {
	out := make([]null.Float, len(closes))
	if size <= 0 {
		return out
	}

	changes := make([]null.Float, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i].Valid && closes[i-1].Valid {
			changes[i] = null.FloatFrom(closes[i].Float64 - closes[i-1].Float64)
		}
	}

	for i := size; i < len(closes); i++ {
		w, ok := window(changes, i, size)
		if !ok {
			continue
		}
		var gain, loss float64
		for _, c := range w {
			if c > 0 {
				gain += c
			} else {
				loss -= c
			}
		}
		out[i] = rsiValue(gain/float64(size), loss/float64(size))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) null.Float {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return null.Float{}
	case avgLoss == 0:
		return null.FloatFrom(100)
	}
	rs := avgGain / avgLoss
	return null.FloatFrom(100 - 100/(1+rs))
}
