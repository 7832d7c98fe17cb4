package models

// Choice es el par valor/etiqueta que consumen los selects del frontend.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
