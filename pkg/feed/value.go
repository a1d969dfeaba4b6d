package feed

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	areaRegEx       = regexp.MustCompile(`([\d,\.]+)\s*m²`)
	postalCodeRegEx = regexp.MustCompile(`^\d+\s+`)
)

// ParsePrice extracts a numeric price from values like "€598,550" or
// "€1,897 / month". Returns nil when the value carries no parsable number.
func ParsePrice(val string) *float64 {
	if val == "" {
		return nil
	}

	// drop the currency symbol, thousand separators, and any unit suffix
	val = strings.SplitN(val, "/", 2)[0]
	val = strings.ReplaceAll(val, "€", "")
	val = strings.ReplaceAll(val, ",", "")
	val = strings.TrimSpace(val)

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseArea extracts the square meter value from strings like "1,142 m²".
func ParseArea(val string) *float64 {
	if val == "" {
		return nil
	}

	m := areaRegEx.FindStringSubmatch(val)
	if m == nil {
		return nil
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &f
}

// DistrictFromAddress extracts the district from address lines like
// "22397 Duvenstedt, Hamburg" (postal code dropped).
func DistrictFromAddress(addr string) string {
	if addr == "" {
		return ""
	}

	part := strings.TrimSpace(strings.SplitN(addr, ",", 2)[0])
	return postalCodeRegEx.ReplaceAllString(part, "")
}
