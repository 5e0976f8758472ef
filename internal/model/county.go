package model

// County is a trip origin: a county or an out-of-region entry point with a
// registered boat population. Fields are fixed for the duration of a run.
type County struct {
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Boats int     `json:"boats"`
}
