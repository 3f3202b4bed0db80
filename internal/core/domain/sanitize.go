package domain

import "strings"

var identifierStripper = strings.NewReplacer("<", "", ">", "", "{", "", "}", "")

// SanitizeIdentifier strips the characters < > { } from s and keeps
// everything else in order. It is idempotent.
func SanitizeIdentifier(s string) string {
	return identifierStripper.Replace(s)
}
