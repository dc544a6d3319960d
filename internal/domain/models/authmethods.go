package models

// Canonical authentication method identifiers, stored in User.AuthMethod.
const (
	AuthMethodPassword = "password" // email + bcrypt password
	AuthMethodGoogle   = "google"   // Google OAuth sign-in
)
