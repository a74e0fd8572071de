package users

import "time"

// User is an authenticated account plus the profile that doubles as the
// primary candidate of its applications.
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	PictureURL string     `json:"pictureUrl"`
	FullName   string     `json:"fullName"`
	Birthdate  *time.Time `json:"-"`
	Phone      string     `json:"phone"`
	School     string     `json:"school"`
	City       string     `json:"city"`
	RegionID   string     `json:"regionId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Profile holds the user-editable fields.
type Profile struct {
	FullName  string
	Birthdate *time.Time
	Phone     string
	School    string
	City      string
	RegionID  string
}

// ReadyAsCandidate reports whether the profile can back an application.
func (u User) ReadyAsCandidate() bool {
	return u.FullName != "" && u.Birthdate != nil && u.RegionID != ""
}
