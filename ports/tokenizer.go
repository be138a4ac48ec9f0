package ports

import "github.com/layer-3/taskboard/core"

// Tokenizer mints and verifies bearer tokens. Implementations hold no
// external state: revocation is checked separately against a RevocationStore.
type Tokenizer interface {
	// Issue signs a token for the given subject and role.
	Issue(subject string, role core.Role) (string, core.Claims, error)

	// Verify checks signature and expiry. Any failure matches
	// core.ErrInvalidToken.
	Verify(token string) (core.Claims, error)
}
