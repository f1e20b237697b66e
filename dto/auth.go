package dto

import "lablinc/models"

type RegisterInput struct {
	Name         string `json:"name" binding:"required,min=2"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	PhoneNumber  string `json:"phoneNumber" binding:"required,phone"`
	Role         int    `json:"role" binding:"oneof=0 1"`
	Organization string `json:"organization"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	GSTNumber    string `json:"gstNumber"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type GoogleLoginInput struct {
	Token string `json:"token" binding:"required"`
	Role  int    `json:"role" binding:"oneof=0 1"`
}

type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

type UpdateProfileInput struct {
	Name         *string `json:"name" binding:"omitempty,min=2"`
	PhoneNumber  *string `json:"phoneNumber" binding:"omitempty,phone"`
	Organization *string `json:"organization"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	GSTNumber    *string `json:"gstNumber"`
	Avatar       *string `json:"avatar" binding:"omitempty,url"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type SettingsInput struct {
	EmailNotifications *bool `json:"emailNotifications"`
	SMSNotifications   *bool `json:"smsNotifications"`
}
