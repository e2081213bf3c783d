package domain

// Domain contains the record shapes the collector knows how to decode.

// Animal is a record served by animal catalogue endpoints.
type Animal struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	MaxWeightInLbs int    `json:"max_weight_lbs"`
}
