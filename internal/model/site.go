package model

// Site is a destination water body. PH and Calcium are optional readings;
// Habitability is derived from them and is nil when neither reading is
// usable, which excludes the site from simulation.
//
// Infestation state is deliberately not part of Site: each Monte Carlo
// trial owns its own infested vector, so trials never share mutable state.
type Site struct {
	Name              string   `json:"name"`
	Lat               float64  `json:"lat"`
	Lon               float64  `json:"lon"`
	PH                *float64 `json:"ph,omitempty"`
	Calcium           *float64 `json:"calcium,omitempty"`
	Attractiveness    int      `json:"attractiveness"`
	InitiallyInfested bool     `json:"initially_infested"`
	Habitability      *float64 `json:"habitability,omitempty"`
}
