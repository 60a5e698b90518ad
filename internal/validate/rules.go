package validate

import "regexp"

// Rule is a closed set of named validation rules. Each rule carries a fixed
// matcher; dispatch is an exhaustive switch rather than a lookup by string.
type Rule int

const (
	RuleNone Rule = iota
	// RuleEmail matches a conventional mailbox@domain.tld shape.
	RuleEmail
	// RulePhone matches Thai local mobile/landline numbers: a leading zero
	// followed by nine digits.
	RulePhone
	// RuleStrongPassword requires at least 8 characters with lower, upper,
	// digit and special characters all present.
	RuleStrongPassword
	// RuleAlpha restricts the value to ASCII letters only.
	RuleAlpha
	// RulePositiveNumber requires a numeric value strictly greater than zero.
	RulePositiveNumber
	// RuleAge requires a numeric value between 0 and 150 inclusive.
	RuleAge
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^0[0-9]{9}$`)
	alphaPattern = regexp.MustCompile(`^[a-zA-Z]+$`)

	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`[0-9]`)
	passwordSpecial = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// check applies the rule to the string form of a value. It returns the
// English and Thai messages for a failure, or ok=true.
func (r Rule) check(s string) (msg, msgTH string, ok bool) {
	switch r {
	case RuleNone:
		return "", "", true
	case RuleEmail:
		if !emailPattern.MatchString(s) {
			return "must be a valid email address", "ต้องเป็นอีเมลที่ถูกต้อง", false
		}
	case RulePhone:
		if !phonePattern.MatchString(s) {
			return "must be a valid phone number (10 digits starting with 0)", "ต้องเป็นเบอร์โทรศัพท์ที่ถูกต้อง (10 หลัก ขึ้นต้นด้วย 0)", false
		}
	case RuleStrongPassword:
		if len(s) < 8 || !passwordLower.MatchString(s) || !passwordUpper.MatchString(s) ||
			!passwordDigit.MatchString(s) || !passwordSpecial.MatchString(s) {
			return "must be at least 8 characters with upper, lower, digit and special characters",
				"ต้องมีอย่างน้อย 8 ตัวอักษร ประกอบด้วยตัวพิมพ์ใหญ่ ตัวพิมพ์เล็ก ตัวเลข และอักขระพิเศษ", false
		}
	case RuleAlpha:
		if !alphaPattern.MatchString(s) {
			return "must contain only letters", "ต้องเป็นตัวอักษรภาษาอังกฤษเท่านั้น", false
		}
	case RulePositiveNumber:
		n, numeric := parseNumber(s)
		if !numeric || n <= 0 {
			return "must be a positive number", "ต้องเป็นตัวเลขที่มากกว่าศูนย์", false
		}
	case RuleAge:
		n, numeric := parseNumber(s)
		if !numeric || n < 0 || n > 150 {
			return "must be an age between 0 and 150", "ต้องเป็นอายุระหว่าง 0 ถึง 150 ปี", false
		}
	}
	return "", "", true
}
