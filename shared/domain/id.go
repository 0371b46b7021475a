package domain

import (
	"github.com/google/uuid"
	"github.com/itchan-dev/boardstore/shared/errors"
)

func NewId() string {
	return uuid.NewString()
}

// ParseId validates s and returns its canonical form.
func ParseId(s string) (string, error) {
	if s == "" {
		return "", errors.ErrInvalidID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", errors.ErrInvalidID
	}
	return id.String(), nil
}
