package domain

import "time"

// User is an account that can upload images, like them and comment on them.
// Username uniqueness is enforced by the database index; the repository
// translates the constraint violation into a domain error at insert time.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PublicUser is the subset of a user record safe to expose to other users.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
