package convert

import (
	"math"
	"strconv"
)

func ThreeDecimals(number float64) float64 {
	return RoundFloat64(number, 3)
}

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(decimals)) / math.Pow10(decimals)
}

// PriceString formats a price in c/kWh the way it is shown to users, e.g. "13.494 c/kWh".
func PriceString(price float64) string {
	return strconv.FormatFloat(ThreeDecimals(price), 'f', 3, 64) + " c/kWh"
}
