// Package registry owns the durable account and group data the panel is
// built around: who can log in, which containers each account may see, and
// the admin-defined container groups. All of it lives in one JSON document
// that is rewritten atomically on every mutation, so a successful call
// implies the change is on disk.
package registry
