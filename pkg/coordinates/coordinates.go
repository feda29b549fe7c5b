package coordinates

import (
	"math"
)

// Constants for coordinate calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusKm is the Earth's radius in kilometers (WGS84 mean radius)
	EarthRadiusKm = 6371.0

	// KmPerNauticalMile is the length of one nautical mile in kilometers
	KmPerNauticalMile = 1.852

	// NauticalMilesPerDegreeLatitude is one minute of arc per nautical mile
	NauticalMilesPerDegreeLatitude = 60.0

	// FeetToMeters converts feet to meters
	FeetToMeters = 0.3048

	// MetersToFeet converts meters to feet
	MetersToFeet = 3.28084

	// MetersPerSecondToKnots converts m/s to knots
	MetersPerSecondToKnots = 1.94384

	// MetersPerSecondToFeetPerMinute converts m/s to ft/min
	MetersPerSecondToFeetPerMinute = MetersToFeet * 60.0
)

// Geographic represents a position on Earth's surface.
// Uses the WGS84 coordinate system (same as GPS).
type Geographic struct {
	// Latitude in decimal degrees (-90 to +90)
	// Positive = North, Negative = South
	Latitude float64

	// Longitude in decimal degrees (-180 to +180)
	// Positive = East, Negative = West
	Longitude float64

	// Altitude in meters above mean sea level (MSL)
	Altitude float64
}

// ToRadians converts the Geographic coordinates to radians.
// Returns (latRad, lonRad, altMeters).
func (g Geographic) ToRadians() (float64, float64, float64) {
	return g.Latitude * DegreesToRadians,
		g.Longitude * DegreesToRadians,
		g.Altitude
}

// NormalizeAzimuth ensures azimuth is in the range [0, 360).
func NormalizeAzimuth(azimuth float64) float64 {
	az := math.Mod(azimuth, 360.0)
	if az < 0 {
		az += 360.0
	}
	return az
}

// Bearing calculates the initial bearing (forward azimuth) from one point to another.
// Uses spherical trigonometry to calculate the bearing along a great circle.
// Returns bearing in degrees (0-360), where 0/360 = North, 90 = East, 180 = South, 270 = West.
func Bearing(from, to Geographic) float64 {
	lat1, lon1, _ := from.ToRadians()
	lat2, lon2, _ := to.ToRadians()

	dLon := lon2 - lon1
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeAzimuth(math.Atan2(y, x) * RadiansToDegrees)
}

// DistanceNauticalMiles calculates the great-circle distance between two points.
// Uses the Haversine formula for accuracy over short and long distances.
// Returns distance in nautical miles.
func DistanceNauticalMiles(from, to Geographic) float64 {
	lat1Rad, lon1Rad, _ := from.ToRadians()
	lat2Rad, lon2Rad, _ := to.ToRadians()

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	// Haversine formula
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c / KmPerNauticalMile
}

// BoundingBox returns the latitude/longitude box enclosing a circle of radiusNM
// around center, using the flat-earth approximation of one nautical mile per
// minute of latitude and cos(latitude) scaling for longitude.
func BoundingBox(center Geographic, radiusNM float64) (minLat, minLon, maxLat, maxLon float64) {
	latRange := radiusNM / NauticalMilesPerDegreeLatitude
	lonRange := radiusNM / (NauticalMilesPerDegreeLatitude * math.Cos(center.Latitude*DegreesToRadians))

	return center.Latitude - latRange, center.Longitude - lonRange,
		center.Latitude + latRange, center.Longitude + lonRange
}
