package models

// Principal is the identity an operation runs under: the caller's user id.
// The zero value is the unauthenticated caller.
type Principal string

const Anonymous Principal = ""

func (p Principal) IsAnonymous() bool { return p == Anonymous }

func (p Principal) String() string {
	if p.IsAnonymous() {
		return "anonymous"
	}
	return string(p)
}

// Owns reports whether p is the owner identified by ownerID.
func (p Principal) Owns(ownerID string) bool {
	return !p.IsAnonymous() && string(p) == ownerID
}
