package usecase

import "errors"

// DomainError: the record data does not allow the action (missing ref,
// incomplete customer). Retrying without a human fix will fail again.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var d *DomainError
	return errors.As(err, &d)
}

// TechnicalError: transport fault or a remote API refusing the call.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var t *TechnicalError
	return errors.As(err, &t)
}

func technical(code string, err error) *TechnicalError {
	return &TechnicalError{Code: code, Message: code + ": " + err.Error(), Err: err}
}
