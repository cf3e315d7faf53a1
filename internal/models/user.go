package models

import "time"

type User struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	PasswordHash string  `json:"-"` // never serialized
	FirebaseUID  *string `json:"firebase_uid,omitempty"`

	IsActive      bool `json:"-"`
	EmailVerified bool `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Password2   string `json:"password2" binding:"required"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FirebaseUID string `json:"firebase_uid"`
}
