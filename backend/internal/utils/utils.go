package utils

import (
	"strings"

	"github.com/itchan-dev/boardstore/shared/domain"
	"github.com/itchan-dev/boardstore/shared/errors"
)

// Validator checks the fields the service layer relies on. It is the
// second line behind request validation in the handlers.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Board(board domain.BoardName) error {
	if strings.TrimSpace(board) == "" {
		return &errors.ValidationError{Message: "board is required"}
	}
	return nil
}

func (v *Validator) Password(password domain.Password) error {
	if password == "" {
		return &errors.ValidationError{Message: "delete_password is required"}
	}
	return nil
}
