package utils

import (
	"regexp"
	"strings"
)

// curpPattern matches the 18-character CURP shape: four letters, birth
// date as YYMMDD, sex marker H/M, five letters for place and name, one
// homonymy character and a check digit.
var curpPattern = regexp.MustCompile(`^[A-Z]{4}\d{6}[HM][A-Z]{5}[A-Z0-9]\d$`)

// NormalizeCURP uppercases and trims a raw CURP value.
func NormalizeCURP(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidCURP reports whether the value (after normalization) is a
// well-formed CURP.  It checks the shape only, not the registry check
// digit algorithm.
func ValidCURP(raw string) bool {
	return curpPattern.MatchString(NormalizeCURP(raw))
}
