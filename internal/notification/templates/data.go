package templates

// LoginCodeData holds variables for the auth.login_code scenario: a 6-digit code
// and the sibling magic link sent in the same email.
type LoginCodeData struct {
	FullName            string
	Code                string
	MagicLinkURL        string
	CodeTTLMinutes      int
	MagicLinkTTLMinutes int
}

// LoginCode is the typed handle for the auth.login_code template.
var LoginCode = Expect[LoginCodeData]("auth.login_code")
