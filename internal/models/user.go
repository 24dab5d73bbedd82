package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the coarse permission level of an account.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 10

// User is an identity record. OTP and OTPExpires are empty when no
// one-time passcode is pending.
type User struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	Email          string          `gorm:"uniqueIndex;not null" json:"email"`
	Password       string          `gorm:"not null" json:"-"`
	Role           Role            `gorm:"type:varchar(16);not null;default:user" json:"role"`
	IsVerified     bool            `gorm:"not null;default:false" json:"isVerified"`
	OTP            string          `json:"-"`
	OTPExpires     *time.Time      `json:"-"`
	Avatar         string          `json:"avatar,omitempty"`
	PhoneNumber    string          `json:"phoneNumber,omitempty"`
	NickName       string          `json:"nickName,omitempty"`
	Addresses      []Address       `gorm:"serializer:json" json:"addresses"`
	TrustedDevices []TrustedDevice `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Address is one saved delivery address; AddressType is unique per user.
type Address struct {
	Country     string `json:"country"`
	City        string `json:"city"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	ZipCode     string `json:"zipCode"`
	AddressType string `json:"addressType"`
}

// TrustedDevice is a device that may log in without a step-up OTP.
type TrustedDevice struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_device" json:"-"`
	DeviceID   string    `gorm:"not null;uniqueIndex:idx_user_device" json:"deviceId"`
	DeviceName string    `json:"deviceName,omitempty"`
	UserAgent  string    `json:"userAgent"`
	Platform   string    `json:"platform"`
	Browser    string    `json:"browser,omitempty"`
	LastUsed   time.Time `json:"lastUsed"`
	IsActive   bool      `gorm:"not null" json:"isActive"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// SetPassword stores the bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// ActiveDevice returns the active trusted device with deviceID, if any.
func (u *User) ActiveDevice(deviceID string) (*TrustedDevice, bool) {
	for i := range u.TrustedDevices {
		d := &u.TrustedDevices[i]
		if d.DeviceID == deviceID && d.IsActive {
			return d, true
		}
	}
	return nil, false
}

// ClearOTP drops any pending passcode.
func (u *User) ClearOTP() {
	u.OTP = ""
	u.OTPExpires = nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
