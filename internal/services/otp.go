package services

import (
	"crypto/rand"
	"fmt"
	"html"
	"strconv"
	"time"

	"dukan/internal/apperror"
)

// OTPTTL is how long an issued passcode stays valid.
const OTPTTL = 30 * time.Minute

// otpResendInterval is the minimum gap between two forgot-password codes.
const otpResendInterval = 60 * time.Second

// Purpose says what a one-time passcode unlocks.
type Purpose string

const (
	PurposeVerifyEmail    Purpose = "verifyEmail"
	PurposeVerifyDevice   Purpose = "verifyDevice"
	PurposeResetPassword  Purpose = "resetPassword"
	PurposeForgotPassword Purpose = "forgotPassword"
)

// ParsePurpose accepts only the known purposes.
func ParsePurpose(s string) (Purpose, error) {
	switch p := Purpose(s); p {
	case PurposeVerifyEmail, PurposeVerifyDevice, PurposeResetPassword, PurposeForgotPassword:
		return p, nil
	}
	return "", apperror.BadRequest("Invalid OTP purpose")
}

// RequiresToken reports whether a successful verification logs the user in.
func (p Purpose) RequiresToken() bool {
	switch p {
	case PurposeVerifyEmail, PurposeVerifyDevice, PurposeResetPassword:
		return true
	case PurposeForgotPassword:
		return false
	}
	return false
}

func (p Purpose) verifiedMessage() string {
	switch p {
	case PurposeVerifyEmail:
		return "Email verified successfully"
	case PurposeVerifyDevice:
		return "Device verified successfully"
	case PurposeResetPassword, PurposeForgotPassword:
		return "OTP verified. You can now reset your password"
	}
	return "OTP verified"
}

func (p Purpose) mailSubject() (subject, title string) {
	switch p {
	case PurposeVerifyEmail:
		return "Email Verification - Your OTP Code", "Verify Your Email"
	case PurposeVerifyDevice:
		return "Device Verification - Your OTP Code", "Verify Your New Device"
	case PurposeResetPassword, PurposeForgotPassword:
		return "Password Reset - Your OTP Code", "Reset Your Password"
	}
	return "Your OTP Code", "Your OTP Code"
}

// otpMail renders the passcode email for purpose.
func otpMail(p Purpose, name, code string) (subject, bodyHTML, bodyText string) {
	subject, title := p.mailSubject()
	minutes := int(OTPTTL / time.Minute)
	bodyHTML = fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:auto">
<h2>%s</h2>
<p>Hello %s,</p>
<p>Your one-time passcode is:</p>
<p style="font-size:28px;font-weight:bold;letter-spacing:6px">%s</p>
<p>This code is valid for %d minutes. If you did not request it, you can ignore this email.</p>
</div>`, title, html.EscapeString(name), code, minutes)
	bodyText = fmt.Sprintf("%s\n\nHello %s,\nYour one-time passcode is %s. It is valid for %d minutes.",
		title, name, code, minutes)
	return subject, bodyHTML, bodyText
}

// generateOTP returns a six digit code in [100000, 999999].
func generateOTP() (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	n := int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	return strconv.Itoa(n%900000 + 100000), nil
}
