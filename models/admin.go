package models

import "time"

// Admin is the identity returned by a successful admin login.
type Admin struct {
	Username   string    `json:"username"`
	LoggedInAt time.Time `json:"loggedInAt"`
}
