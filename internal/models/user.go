package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Preferences are the user's account settings
type Preferences struct {
	PrivateAccount      bool `json:"privateAccount" gorm:"default:false"`
	ShowProfileLocation bool `json:"showProfileLocation" gorm:"default:true"`
	EmailNotifications  bool `json:"emailNotifications" gorm:"default:true"`
	PushNotifications   bool `json:"pushNotifications" gorm:"default:true"`
}

// DefaultPreferences returns the settings a new account starts with
func DefaultPreferences() Preferences {
	return Preferences{
		ShowProfileLocation: true,
		EmailNotifications:  true,
		PushNotifications:   true,
	}
}

type User struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	FirstName   string      `json:"firstname" gorm:"size:100"`
	LastName    string      `json:"lastname" gorm:"size:100"`
	Email       string      `json:"email" gorm:"uniqueIndex"`
	Password    string      `json:"-"` // bcrypt hash
	Bio         string      `json:"bio"`
	AvatarURL   string      `json:"avatarUrl"`
	Country     string      `json:"country" gorm:"size:100"`
	City        string      `json:"city" gorm:"size:100"`
	Preferences Preferences `json:"preferences" gorm:"embedded;embeddedPrefix:pref_"`
	FirebaseUID *string     `json:"firebaseUid,omitempty" gorm:"uniqueIndex"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// AuthorSummary is the public slice of a user embedded in posts and comments
type AuthorSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
}

// ToSummary returns the author view of a user. Country and city are only
// exposed when the user allows showing their profile location.
func (u *User) ToSummary() AuthorSummary {
	s := AuthorSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
	if u.Preferences.ShowProfileLocation {
		s.Country = u.Country
		s.City = u.City
	}
	return s
}

type RegisterRequest struct {
	FirstName string `json:"firstname" validate:"required,min=1,max=100"`
	LastName  string `json:"lastname" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is a partial profile update. Nil fields are left as is.
type UpdateUserRequest struct {
	FirstName *string `json:"firstname" validate:"omitempty,max=100"`
	LastName  *string `json:"lastname" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=2048"`
	Country   *string `json:"country" validate:"omitempty,max=100"`
	City      *string `json:"city" validate:"omitempty,max=100"`
}

type UpdatePreferencesRequest struct {
	PrivateAccount      *bool `json:"privateAccount"`
	ShowProfileLocation *bool `json:"showProfileLocation"`
	EmailNotifications  *bool `json:"emailNotifications"`
	PushNotifications   *bool `json:"pushNotifications"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
