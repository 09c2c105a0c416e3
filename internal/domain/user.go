package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Friends      []string  `json:"friends,omitempty" dynamodbav:"friends,stringset,omitempty"` // legacy, never validated
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
