package model

import (
	"gorm.io/datatypes"
)

// Account roles. super-admin is seeded once and excluded from role listings.
const (
	RoleUser       = "user"
	RoleVendor     = "vendor"
	RoleSalon      = "salon"
	RoleArtist     = "artist"
	RoleSuperAdmin = "super-admin"
)

const DefaultImageURL = "https://res.cloudinary.com/dxyb4xgcs/image/upload/v1723172250/user-placeholder_hhrfnj.png"

type User struct {
	Base
	Role string `gorm:"size:20" json:"role"`
	Name string `gorm:"size:100" json:"name"`
	// Identity columns are uniquely indexed only when present; the field not
	// serving as the configured identity may legitimately stay empty.
	Email    string `gorm:"size:100;uniqueIndex:uniq_users_email,where:email <> ''" json:"email"`
	Username string `gorm:"uniqueIndex;size:100" json:"username"`
	MobileNo string `gorm:"size:20;uniqueIndex:uniq_users_mobile_no,where:mobile_no <> ''" json:"mobile_no"`

	// Credential material, never serialized and never part of the fillables.
	Password           string `gorm:"size:255" json:"-"`
	VerificationCode   string `gorm:"size:255" json:"-"`
	ResetPasswordToken string `gorm:"size:255" json:"-"`

	EmailVerified    bool `gorm:"default:false" json:"email_verified"`
	MobileNoVerified bool `gorm:"default:false" json:"mobile_no_verified"`

	ImageURL       string  `gorm:"size:512" json:"image_url"`
	Gender         string  `gorm:"size:10" json:"gender"`
	Age            int     `json:"age"`
	Description    string  `json:"description"`
	CompletionStep int     `gorm:"default:1" json:"completion_step"`
	Latitude       float64 `gorm:"default:0" json:"latitude"`
	Longitude      float64 `gorm:"default:0" json:"longitude"`

	// GeoJSON point {type:"Point", coordinates:[lng,lat]} and the nested
	// address object, both stored as JSON columns.
	CurrentLocation datatypes.JSON `json:"current_location"`
	Address         datatypes.JSON `json:"address"`

	OnlineStatus  bool `gorm:"default:false" json:"online_status"`
	PaymentActive bool `gorm:"default:false" json:"payment_active"`
}

func (User) TableName() string {
	return "users"
}

// Fillables is the allow-list of columns returned by reads. Credential columns
// are deliberately absent.
func (User) Fillables() []string {
	return []string{
		"id",
		"slug",
		"status",
		"role",
		"name",
		"email",
		"username",
		"mobile_no",
		"email_verified",
		"mobile_no_verified",
		"image_url",
		"gender",
		"age",
		"description",
		"completion_step",
		"latitude",
		"longitude",
		"current_location",
		"address",
		"online_status",
		"payment_active",
		"created_at",
		"updated_at",
	}
}

// SoftDelete keeps deleted users on record.
func (User) SoftDelete() bool {
	return true
}

// GeoPoint is the persisted shape of current_location.
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}
