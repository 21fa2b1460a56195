package apperr

type Kind string

type AppError struct {
	Kind      Kind
	PublicMsg string // safe to return to the caller
	Err       error  // internal error (log only)
}
