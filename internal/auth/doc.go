// Package auth holds the credential primitives: one-way password hashing
// and verification, and the HS256 session tokens issued after login.
package auth
