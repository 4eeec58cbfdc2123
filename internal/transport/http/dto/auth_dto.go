package dto

import "time"

type SignupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	UserType      string `json:"userType"`
	CompanyName   string `json:"companyName"`
	LicenseNumber string `json:"licenseNumber"`
}

type SignupResponse struct {
	Message  string   `json:"message"`
	UserType string   `json:"userType"`
	User     UserInfo `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message  string   `json:"message"`
	Token    string   `json:"token"`
	UserType string   `json:"userType"`
	User     UserInfo `json:"user"`
}

type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserItem struct {
	UID           string    `json:"uid"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	UserType      string    `json:"userType"`
	CompanyName   string    `json:"companyName,omitempty"`
	LicenseNumber string    `json:"licenseNumber,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type UsersListResponse struct {
	Message string     `json:"message"`
	Users   []UserItem `json:"users"`
}
