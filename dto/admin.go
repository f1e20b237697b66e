package dto

import "lablinc/utils"

type UserStatusInput struct {
	Status int `json:"status" binding:"oneof=0 1"`
}

type UserFilter struct {
	Role   *int
	Status *int
	Query  string
	Page   utils.Page
}

type AuditFilter struct {
	ActorID    uint
	Action     string
	EntityType string
	Page       utils.Page
}

type PlatformStats struct {
	Users           int64            `json:"users"`
	Institutes      int64            `json:"institutes"`
	MSMEs           int64            `json:"msmes"`
	Instruments     int64            `json:"instruments"`
	BookingsByState map[string]int64 `json:"bookingsByStatus"`
	Revenue         int64            `json:"revenue"`
}
