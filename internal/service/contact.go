package service

import (
	"strings"

	"printscrap/internal/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var contactValidator = validator.New()

// normalizeContact accepts an email address or a phone number. Emails are
// lower-cased; phone numbers are parsed against region and rendered in E.164.
// An empty contact stays empty.
func normalizeContact(field, raw, region string) (*string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if strings.Contains(s, "@") {
		if err := contactValidator.Var(s, "email"); err != nil {
			return nil, apierror.Validation(field, "must be a valid email address or phone number")
		}
		out := strings.ToLower(s)
		return &out, nil
	}
	num, err := libphonenumber.Parse(s, region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return nil, apierror.Validation(field, "must be a valid email address or phone number")
	}
	out := libphonenumber.Format(num, libphonenumber.E164)
	return &out, nil
}

// normalizePhone parses raw against region and renders it in E.164.
func normalizePhone(field, raw, region string) (*string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	num, err := libphonenumber.Parse(s, region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return nil, apierror.Validation(field, "must be a valid phone number")
	}
	out := libphonenumber.Format(num, libphonenumber.E164)
	return &out, nil
}
