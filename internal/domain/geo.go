package domain

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoReference ties a place name from a document to its geocoded point.
// Coordinates is nil while the place is unresolved; ingestion only indexes
// resolved references, so a nil pointer never carries placeholder values.
type GeoReference struct {
	PlaceName   string       `json:"placeName"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// GeoPoint is a resolved query-side reference: always carries coordinates.
type GeoPoint struct {
	PlaceName string
	Lat       float64
	Lon       float64
}
