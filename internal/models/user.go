package models

// User represents a registered user account.
type User struct {
	// ID is the database-generated identifier.
	ID int64

	// Username is the login name. Uniqueness is not enforced.
	Username string

	// Password is compared verbatim at login; it is never hashed.
	Password string

	Email string
}

// NewUser creates a new User ready to be persisted. The ID is assigned by the store.
func NewUser(username, password, email string) *User {
	return &User{
		Username: username,
		Password: password,
		Email:    email,
	}
}
