package entities

import "time"

type DocumentFormat string

const (
	DocumentFormatText DocumentFormat = "txt"
	DocumentFormatDocx DocumentFormat = "docx"
	DocumentFormatHTML DocumentFormat = "html"
)

// Document is an uploaded text. Content never changes after creation.
type Document struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"` // UUID v4
	Title     string         `gorm:"size:255;not null" json:"title"`
	Author    string         `gorm:"size:255;not null" json:"author"`
	Uploader  string         `gorm:"size:100" json:"uploader"`
	Language  string         `gorm:"index;size:64;not null" json:"language"`
	Content   string         `gorm:"type:text;not null" json:"-"`
	Filename  string         `gorm:"size:255" json:"filename,omitempty"`
	Format    DocumentFormat `gorm:"size:10" json:"format"`
	UserID    uint           `gorm:"index" json:"user_id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}
