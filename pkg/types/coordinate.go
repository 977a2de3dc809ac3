package types

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Place struct {
	Coordinate  Coordinate `json:"coordinate"`
	AddressText string     `json:"addressText"`
}
