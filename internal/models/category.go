package models

// Category, etkinlik kategorisi.
type Category struct {
	BaseModel
	Name string `json:"name" db:"name"`
}
