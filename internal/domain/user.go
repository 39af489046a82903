package domain

import "time"

// User is an account that can browse, order and own a restaurant.
type User struct {
	ID             string     `json:"_id"`
	Fullname       string     `json:"fullname"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Contact        string     `json:"contact"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	Country        string     `json:"country"`
	ProfilePicture string     `json:"profilePicture"`
	Admin          bool       `json:"admin"`
	IsVerified     bool       `json:"isVerified"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
