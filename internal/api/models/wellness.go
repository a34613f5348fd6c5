package models

// WellnessStatus is the wellness center's resolved state for one date.
type WellnessStatus struct {
	Date      string `json:"date"`
	IsOpen    bool   `json:"isOpen"`
	Hours     string `json:"hours"`
	IsSpecial bool   `json:"isSpecial"`
}
