package serverstore

const (
	// KeyPrefixGroups is the prefix for per-scope group payloads.
	KeyPrefixGroups = "tv:groups:"
	// KeyPrefixScopes is the prefix for the per-user set of workspace IDs.
	KeyPrefixScopes = "tv:scopes:"
	// KeyWaitlist is the set of waitlist email addresses.
	KeyWaitlist = "tv:waitlist"
)

// GroupsKey returns the Redis key holding one scope's sealed group list.
func GroupsKey(userID, workspaceID string) string {
	return KeyPrefixGroups + userID + ":" + workspaceID
}

// ScopesKey returns the key of the set of workspace IDs a user has
// stored remotely.
func ScopesKey(userID string) string {
	return KeyPrefixScopes + userID
}
