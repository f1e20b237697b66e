package dto

type CreatePaymentInput struct {
	BookingID uint   `json:"bookingId" binding:"required"`
	Method    string `json:"method" binding:"required,max=40"`
}
