package domain

import "time"

// Image is one uploaded file plus its social metadata. Filename is the
// server-generated storage key; the backing binary lives in the media store
// under that key and the record is only as alive as the file behind it.
type Image struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Filename     string    `gorm:"column:filename;uniqueIndex;not null" json:"filename"`
	OriginalName string    `gorm:"column:original_name" json:"original_name,omitempty"`
	URL          string    `gorm:"column:url" json:"url"`
	Description  string    `gorm:"column:description" json:"description,omitempty"`
	Likes        int64     `gorm:"column:likes;not null;default:0" json:"likes"`
	UploaderID   int64     `gorm:"column:uploader_id;index;not null" json:"uploader_id"`
	Uploader     *User     `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	Comments     []Comment `gorm:"foreignKey:ImageID" json:"comments,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Image) TableName() string { return "images" }
