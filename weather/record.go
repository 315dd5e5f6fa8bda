package weather

import (
	"fmt"
	"math"
)

// Record is the normalized weather served to callers.
// Temperatures are in °C rounded to one decimal, Condition is a coarse category
// such as "Clear" or "Rain", and Place is the localized place name.
type Record struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	FeelsLike   float64 `json:"feelsLike" yaml:"feels_like"`
	Humidity    int     `json:"humidity" yaml:"humidity"`
	Condition   string  `json:"condition" yaml:"condition"`
	Description string  `json:"description" yaml:"description"`
	Icon        string  `json:"icon" yaml:"icon"`
	Place       string  `json:"place" yaml:"place"`
}

// Observation is what a Fetcher returns: the provider's reading before normalization.
type Observation struct {
	PlaceName   string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Condition   string
	Description string
	Icon        string
}

// DefaultFallback is served whenever the provider cannot be reached.
var DefaultFallback = Record{
	Temperature: 22,
	FeelsLike:   22,
	Humidity:    60,
	Condition:   "Clear",
	Description: "clear sky",
	Icon:        "01d",
	Place:       "Unknown",
}

/*
GeoKey quantizes a coordinate pair into a grid cell key.

Latitude and longitude are rounded independently to one decimal digit
(a cell is roughly 11 km wide at the equator) and joined as "{lat}:{lon}".
Distinct points inside one cell share a key on purpose.

	GeoKey(25.0330, 121.5654) == "25.0:121.6"
*/
func GeoKey(lat, lon float64) string {
	return fmt.Sprintf("%.1f:%.1f", round1(lat), round1(lon))
}

// round1 rounds half away from zero to one decimal and folds -0 into 0.
func round1(x float64) float64 {
	r := math.Round(x*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
