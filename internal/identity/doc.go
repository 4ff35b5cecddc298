// Package identity manages accounts: registration, login, profile updates,
// and the contact directory.
//
// Passwords are stored as bcrypt hashes. Tokens carry the user's display
// fields as claims, so every operation that changes the profile re-issues
// the token; sessions opened with the old token keep their stale identity
// until reconnect.
package identity
