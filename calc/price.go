package calc

import "math"

// Display precision for the two price units.
const (
	SekDecimals = 4
	OreDecimals = 2
)

func Round(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(decimals)) / math.Pow10(decimals)
}

// SekToOre converts a SEK/kWh spot price to öre/kWh.
func SekToOre(sek float64) float64 {
	return Round(sek*100, OreDecimals)
}

func OreToSek(ore float64) float64 {
	return Round(ore/100, SekDecimals)
}

// TotalSek is the spot price plus the configured surcharge, in SEK/kWh.
// The surcharge is always configured in öre.
func TotalSek(spotSek, surchargeOre float64) float64 {
	return Round(spotSek+OreToSek(surchargeOre), SekDecimals)
}

// TotalOre is the spot price plus the configured surcharge, in öre/kWh.
func TotalOre(spotSek, surchargeOre float64) float64 {
	return Round(spotSek*100+surchargeOre, OreDecimals)
}
