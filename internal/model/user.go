package model

// User represents an application user record as stored in the
// `users` table.  Hash is never serialised; handlers expose only the
// id, name and email.
//
// Fields:
//
//	ID    – primary key identifier of the user.
//	Name  – display name.
//	Email – unique, lower-cased email address.
//	Hash  – bcrypt hashed password.
type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Hash  string `json:"-"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA‑256 hash.  Times are unix seconds.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt int64
	RevokedAt *int64
}
