package model

import "time"

// PrintReceipt is a print job the server accepted, kept as local history.
type PrintReceipt struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Email       string    `gorm:"index;size:256;not null" json:"email"`
	FileName    string    `gorm:"size:512;not null" json:"fileName"`
	DocumentID  string    `gorm:"size:128;not null" json:"documentId"`
	Color       bool      `gorm:"not null" json:"color"`
	DoubleSided bool      `gorm:"not null" json:"doubleSided"`
	Staple      bool      `gorm:"not null" json:"staple"`
	Collate     bool      `gorm:"not null" json:"collate"`
	Copies      int       `gorm:"not null" json:"copies"`
	SubmittedAt time.Time `gorm:"index;not null" json:"submittedAt"`
}
