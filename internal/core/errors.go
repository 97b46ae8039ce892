package core

import "errors"

// Close codes reported to a client whose connection attempt is rejected.
const (
	CloseCodeDuplicateIdentity = 4000
	CloseCodeInvalidIdentity   = 4001
)

var (
	// ErrInvalidIdentity rejects an empty or whitespace-only username.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrDuplicateIdentity rejects a username that is already connected.
	ErrDuplicateIdentity = errors.New("duplicate identity")
)
