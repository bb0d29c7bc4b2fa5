// Package validation holds the form rules applied before any call to the
// voting API. Violations are keyed by form field and rendered inline.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Violations maps a form field to its message
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add keeps the first message recorded for a field
func (v Violations) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// Err returns nil when there are no violations
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Fields: v}
}

// Error carries violations through error returns
type Error struct {
	Fields Violations
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	mobilePattern       = regexp.MustCompile(`^[6-9]\d{9}$`)
	otpPattern          = regexp.MustCompile(`^\d{6}$`)
	electionCardPattern = regexp.MustCompile(`^[A-Z]{3}\d{7}$`)

	upper = cases.Upper(language.Und)
	fold  = cases.Fold()
)

const (
	MinPasswordLength    = 8
	VotingPasswordLength = 8
	MinimumAge           = 18
	DateLayout           = "2006-01-02"
)

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "This field is required")
	}
}

func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "Email is required")
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@"):], ".") {
		v.Add(field, "Enter a valid email address")
	}
}

// Mobile accepts 10 digits starting with 6-9
func Mobile(field, value string, v Violations) {
	if !mobilePattern.MatchString(strings.TrimSpace(value)) {
		v.Add(field, "Mobile number must be 10 digits starting with 6-9")
	}
}

func Password(field, value string, v Violations) {
	if len(value) < MinPasswordLength {
		v.Add(field, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
}

func PasswordMatch(field, password, confirm string, v Violations) {
	if password != confirm {
		v.Add(field, "Passwords do not match")
	}
}

// Adult checks a YYYY-MM-DD date of birth against MinimumAge at now
func Adult(field, dob string, now time.Time, v Violations) {
	born, err := time.Parse(DateLayout, strings.TrimSpace(dob))
	if err != nil {
		v.Add(field, "Enter your date of birth")
		return
	}
	if Age(born, now) < MinimumAge {
		v.Add(field, fmt.Sprintf("You must be at least %d years old", MinimumAge))
	}
}

// Age in whole years on now
func Age(born, now time.Time) int {
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years
}

// OTP accepts a 6-digit code
func OTP(field, value string, v Violations) {
	if !otpPattern.MatchString(strings.TrimSpace(value)) {
		v.Add(field, "Enter the 6-digit code sent to your email")
	}
}

// VotingPassword accepts exactly 8 characters
func VotingPassword(field, value string, v Violations) {
	if len([]rune(strings.TrimSpace(value))) != VotingPasswordLength {
		v.Add(field, fmt.Sprintf("Voting password must be %d characters", VotingPasswordLength))
	}
}

// NormalizeElectionCard upper-cases and strips everything but letters and digits.
func NormalizeElectionCard(value string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, value)
	return upper.String(stripped)
}

// IsElectionCard reports whether value is already in normalized card form
func IsElectionCard(value string) bool {
	return electionCardPattern.MatchString(value)
}

// ElectionCard normalizes value and checks the 3 letters + 7 digits format.
// It returns the normalized number.
func ElectionCard(field, value string, v Violations) string {
	normalized := NormalizeElectionCard(value)
	if !IsElectionCard(normalized) {
		v.Add(field, "Election card number must be 3 letters followed by 7 digits")
	}
	return normalized
}

// FoldSearch normalizes a search term for comparison and transmission
func FoldSearch(term string) string {
	return fold.String(strings.Join(strings.Fields(term), " "))
}
