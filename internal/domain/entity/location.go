package entity

// Location is a WGS84 coordinate pair in degrees.
type Location struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}
