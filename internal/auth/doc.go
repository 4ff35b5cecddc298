// Package auth provides token verification and identity propagation.
//
// # Tokens
//
// Sessions authenticate with HS256 JWTs. The identity service issues tokens
// whose claims carry a projection of the user row (sub, name, email, avatar)
// so the chat layer never needs to re-fetch the user during a handshake:
//
//	verifier := auth.NewJWTVerifier(secret)
//	identity, err := verifier.Verify(tokenString)
//
// Verification failures return sentinel errors (ErrInvalidToken,
// ErrExpiredToken, ErrMissingClaim). A failed handshake is terminal: the
// connection is refused before any session state is created, and the client
// must reconnect with a fresh token.
//
// # Context propagation
//
// WithIdentity/FromContext attach the verified identity to a context so
// event handlers can recover the caller without threading it explicitly.
package auth
