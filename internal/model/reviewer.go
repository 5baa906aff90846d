package model

import "time"

// Reviewer represents a staff account allowed to audit proctoring evidence
// and issue review decisions.
type Reviewer struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReviewerLoginRequest is the payload for reviewer authentication.
type ReviewerLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// ReviewerLoginResponse is returned after successful reviewer login.
type ReviewerLoginResponse struct {
	Token    string   `json:"token"`
	Reviewer Reviewer `json:"reviewer"`
}
