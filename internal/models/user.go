package models

// User represents a chat user stored in the users table.
type User struct {
	ID       int64   `db:"user_id" json:"user_id"`
	Username *string `db:"username" json:"username,omitempty"`
	IsAdmin  bool    `db:"is_admin" json:"is_admin"`
}
