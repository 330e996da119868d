package domain

// UserProfile identifies an authenticated editor. The auth layer is a
// thin black box: validated token claims, nothing more.
type UserProfile struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
