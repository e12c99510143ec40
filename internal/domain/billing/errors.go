package billing

import "errors"

var (
	ErrBillingNotFound  = errors.New("billing not found")
	ErrResidentNotFound = errors.New("resident not found")
	ErrDuplicateDueDate = errors.New("billing already exists for resident and due date")
	ErrInvoiceRequired  = errors.New("invoice file is required to mark a billing paid")
	ErrAlreadyPaid      = errors.New("billing is already paid")
)
