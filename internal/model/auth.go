package model

import "github.com/golang-jwt/jwt/v5"

// TrainerClaims are JWT claims for trainer authentication
type TrainerClaims struct {
	TrainerID string `json:"trainerId"`
	jwt.RegisteredClaims
}

// StudentClaims are JWT claims for session-scoped student tokens
type StudentClaims struct {
	JoinCode  string `json:"joinCode"`
	StudentID string `json:"studentId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for trainer login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token     string `json:"token"`
	TrainerID string `json:"trainerId"`
}
