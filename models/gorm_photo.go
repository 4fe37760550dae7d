package models

// Photo represents one cached remote image belonging to exactly one Pin.
// It corresponds to the 'photos' table.
//
// ImageData is nil until the byte loader has fetched the remote resource;
// once set it is never cleared except by deleting the row itself.
type Photo struct {
	ID        string `gorm:"primaryKey" json:"id"`         // UUID
	URL       string `gorm:"not null" json:"url"`          // remote image URL, immutable
	ImageData []byte `gorm:"" json:"-"`                    // Nullable, raw image bytes
	PinID     string `gorm:"not null;index" json:"pin_id"` // owning pin
	CreatedAt int64  `gorm:"not null" json:"created_at"`   // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}

// HasImage reports whether the photo's bytes have been downloaded yet.
func (p *Photo) HasImage() bool {
	return len(p.ImageData) > 0
}
