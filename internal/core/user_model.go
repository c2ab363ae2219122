package core

// UserInput carries the fields for creating a user. Password is plain text and is
// hashed before storage.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}
