package geo

import (
	"fmt"
	"math"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

const earthRadiusMeters = 6371000

// Distance returns the great-circle distance between two coordinates in
// meters, rounded to the nearest meter.
func Distance(a, b models.Coordinate) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusMeters * c)
}

// FormatDistance renders meters for display: whole meters below 1 km,
// one-decimal kilometers from 1 km on.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}
