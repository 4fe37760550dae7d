package models

// Pin represents a user-marked geographic location in the database using GORM.
// It corresponds to the 'pins' table.
type Pin struct {
	ID        string  `gorm:"primaryKey" json:"id"` // UUID
	Latitude  float64 `gorm:"not null;index" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	CreatedAt int64   `gorm:"not null" json:"created_at"` // Unix timestamp

	// Relationships. Duplicate coordinates are intentionally allowed;
	// map selection resolves pins by ID, not by coordinate equality.
	Photos []Photo `gorm:"foreignKey:PinID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Pin) TableName() string {
	return "pins"
}
