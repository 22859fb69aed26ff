package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	telefonoPattern = regexp.MustCompile(`^\d{10,15}$`)
	codigoPattern   = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
)

// ValidTelefono accepts 10 to 15 digits, the range between a Mexican
// national number and a full E.164 number without the plus sign.
func ValidTelefono(s string) bool {
	return telefonoPattern.MatchString(strings.TrimSpace(s))
}

// ValidEmail checks the address shape.
func ValidEmail(s string) bool {
	_, err := mail.ParseAddress(strings.TrimSpace(s))
	return err == nil
}

// ValidCodigo reports whether a municipality code is 2 to 10
// alphanumerics after uppercasing.
func ValidCodigo(s string) bool {
	return codigoPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// ValidName bounds a name field to the column size.
func ValidName(s string) bool {
	n := len(strings.TrimSpace(s))
	return n > 0 && n <= 100
}
