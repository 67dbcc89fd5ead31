package domain

// User carries the contact details the engine needs when dispatching
// notices. Account management lives upstream.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
