package domain

// User identifies a participant that can click the button and submit prompts.
type User struct {
	ID     string
	Name   string
	Locale string
}

// DisplayName returns the name shown on the status label.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.ID != "" {
		return u.ID
	}
	return "someone"
}
