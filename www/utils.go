package www

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/icodeforyou/spotprice-go/prices"
)

const invalidDayMessage = "day must be one of all, today or tomorrow"

// positiveIntOrDefault reads a query parameter, ignoring values below 1.
func positiveIntOrDefault(u *url.URL, key string, defaultValue int) int {
	if i, err := strconv.Atoi(u.Query().Get(key)); err == nil && i > 0 {
		return i
	}
	return defaultValue
}

func dayParam(r *http.Request) (prices.Day, bool) {
	return prices.ParseDay(r.URL.Query().Get("day"))
}
