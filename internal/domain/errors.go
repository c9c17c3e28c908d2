package domain

const (
	MsgMissingDates      = "Missing required parameters: startDate and endDate are required (YYYY-MM-DD format)"
	MsgInvalidDateFormat = "Invalid date format. Use YYYY-MM-DD format"
	MsgInvalidDateRange  = "Invalid date range: startDate must be on or before endDate"
	MsgNoCustomerIDs     = "No customer IDs provided. Set GOOGLE_ADS_CUSTOMER_IDS in your .env file or pass customerIds parameter"
	MsgInvalidCustomerID = "Invalid customer ID: customer IDs must not be empty after removing hyphens"
)

// ValidationReason classifica o motivo da falha de validação
type ValidationReason string

const (
	ReasonMissingDates  ValidationReason = "missing_dates"
	ReasonInvalidDate   ValidationReason = "invalid_date"
	ReasonInvalidRange  ValidationReason = "invalid_range"
	ReasonNoCustomerIDs ValidationReason = "no_customer_ids"
	ReasonInvalidID     ValidationReason = "invalid_customer_id"
)

// ValidationError é um erro do chamador: nenhuma chamada externa é feita
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func NewValidationError(reason ValidationReason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}
