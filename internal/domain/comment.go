package domain

import "time"

// Comment belongs to exactly one image and is removed together with it.
// Text is stored trimmed and is immutable after creation.
type Comment struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	ImageID   int64     `gorm:"column:image_id;index;not null" json:"image_id"`
	Text      string    `gorm:"column:text;not null" json:"text"`
	AuthorID  int64     `gorm:"column:author_id;not null" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }
