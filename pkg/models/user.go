package models

import "time"

// User is an email-identified profile. There are no credentials: the email
// string is the whole identity, matching the original application.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}
