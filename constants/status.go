package constants

// User roles
const (
	RoleMSME      = 0
	RoleInstitute = 1
	RoleAdmin     = 2
)

// User status
const (
	UserStatusActive   = 1
	UserStatusInactive = 0
)

// Instrument status
const (
	InstrumentStatusAvailable   = "available"
	InstrumentStatusMaintenance = "maintenance"
	InstrumentStatusInactive    = "inactive"
)

// Booking payment status
const (
	BookingUnpaid   = "unpaid"
	BookingPaid     = "paid"
	BookingRefunded = "refunded"
)

// Payment status
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Notification types
const (
	NotificationBooking = "booking"
	NotificationPayment = "payment"
	NotificationReview  = "review"
	NotificationSystem  = "system"
)

// Audit actions
const (
	AuditBookingCreated    = "booking.create"
	AuditBookingStatus     = "booking.status"
	AuditInstrumentCreated = "instrument.create"
	AuditInstrumentUpdated = "instrument.update"
	AuditInstrumentDeleted = "instrument.delete"
	AuditUserStatus        = "user.status"
	AuditInstituteVerified = "user.verify"
	AuditPaymentCreated    = "payment.create"
)

const DefaultCurrency = "INR"

// RoleName returns the lowercase name of a role.
func RoleName(role int) string {
	switch role {
	case RoleMSME:
		return "msme"
	case RoleInstitute:
		return "institute"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}
