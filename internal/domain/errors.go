package domain

import "fmt"

// errors.go defines domain-specific error types.
type domainErr struct {
	message string
}

// Error returns the error message.
func (e domainErr) Error() string {
	return e.message
}

// NotFoundErr represents an error when a requested entity is not found.
type NotFoundErr struct {
	domainErr
}

// NewNotFoundErr creates a new NotFoundErr with the given message.
func NewNotFoundErr(message string) *NotFoundErr {
	return &NotFoundErr{
		domainErr: domainErr{message: message},
	}
}

// ValidationErr represents an error when validation fails.
type ValidationErr struct {
	domainErr
}

// NewValidationErr creates a new ValidationErr with the given message.
func NewValidationErr(message string) *ValidationErr {
	return &ValidationErr{
		domainErr: domainErr{message: message},
	}
}

// ProviderErr represents a failure of an external provider call,
// naming the provider and model alongside the underlying cause.
type ProviderErr struct {
	Provider string
	Model    string
	Cause    error
}

// NewProviderErr creates a new ProviderErr.
func NewProviderErr(provider, model string, cause error) *ProviderErr {
	return &ProviderErr{Provider: provider, Model: model, Cause: cause}
}

// Error returns the error message.
func (e *ProviderErr) Error() string {
	return fmt.Sprintf("provider %s (model %s): %v", e.Provider, e.Model, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ProviderErr) Unwrap() error {
	return e.Cause
}
