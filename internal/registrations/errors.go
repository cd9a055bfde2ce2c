package registrations

import "errors"

var (
	ErrInvalidKind  = errors.New("unknown registration kind")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("registration not found")
	ErrTeamSize     = errors.New("team size out of bounds")
	ErrLeadRemoval  = errors.New("the team lead cannot be removed")
	ErrNoRecipient  = errors.New("no recipient email")
	ErrQRFailed     = errors.New("qr code generation failed")
	ErrMailFailed   = errors.New("confirmation mail failed")
)
