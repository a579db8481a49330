package models

// Relationship, başkası adına bilet alırken alıcı ile bilet sahibi arasındaki
// yakınlıktır ("self", "family", "friend").
type Relationship struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
