package service

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// emailFormat is a syntax check only; is.Email would also resolve the domain.
var emailFormat = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 254),
			validation.Match(emailFormat).Error("must be a valid email address")),
		// bcrypt ignores everything past 72 bytes
		validation.Field(&in.Password, validation.Required, validation.Length(1, 72)),
	)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}
