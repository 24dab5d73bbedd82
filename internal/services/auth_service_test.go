package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"dukan/internal/models"
	"dukan/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var laptop = DeviceInfo{DeviceID: "dev-laptop", DeviceName: "Laptop", UserAgent: "Mozilla/5.0", Platform: "web", Browser: "Firefox"}

type authFixture struct {
	svc    *AuthService
	store  *repositories.GORMStore
	mailer *mockMailer
	clock  time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	f := &authFixture{
		store:  newTestStore(t),
		mailer: new(mockMailer),
		clock:  time.Now(),
	}
	f.svc = NewAuthService(f.store, testTokens(), f.mailer, nil, zap.NewNop())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

// pendingCode reads the OTP currently stored for email.
func (f *authFixture) pendingCode(t *testing.T, email string) string {
	t.Helper()
	user, err := f.store.Users().GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotEmpty(t, user.OTP)
	return user.OTP
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name, userName, email, password, message string
	}{
		{"missing name", "", "a@example.com", testPassword, "Name, email and password are required"},
		{"missing password", "Asha", "a@example.com", "", "Name, email and password are required"},
		{"bad email", "Asha", "not-an-email", testPassword, "Invalid email format"},
		{"short password", "Asha", "a@example.com", "12345", "Password must be at least 6 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			requireCode(t, err, http.StatusBadRequest)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_SendsVerificationOTP(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.On("Send", mock.Anything, "asha@example.com", "Email Verification - Your OTP Code", mock.Anything, mock.Anything).Return(nil)

	user, err := f.svc.Register(context.Background(), "Asha", " Asha@Example.com ", testPassword)
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsVerified)
	assert.Len(t, f.pendingCode(t, "asha@example.com"), 6)
	f.mailer.AssertExpectations(t)
}

func TestRegister_MailFailureRemovesAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := f.svc.Register(context.Background(), "Asha", "asha@example.com", testPassword)
	requireCode(t, err, http.StatusInternalServerError)

	_, err = f.store.Users().GetByEmail(context.Background(), "asha@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRegister_ExistingAccounts(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	ctx := context.Background()

	seedUser(t, f.store, "verified@example.com", models.RoleUser, true)
	_, err := f.svc.Register(ctx, "Asha", "verified@example.com", testPassword)
	requireCode(t, err, http.StatusConflict)

	first, err := f.svc.Register(ctx, "Ravi", "ravi@example.com", testPassword)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "Ravi", "ravi@example.com", testPassword)
	requireCode(t, err, http.StatusForbidden)

	// Once the pending OTP lapses the unverified account is replaced.
	f.clock = f.clock.Add(OTPTTL + time.Minute)
	second, err := f.svc.Register(ctx, "Ravi", "ravi@example.com", testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestVerifyOTP_EmailVerificationTrustsDeviceOnce(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Asha", "asha@example.com", testPassword)
	require.NoError(t, err)
	code := f.pendingCode(t, "asha@example.com")

	in := VerifyOTPInput{Email: "asha@example.com", OTP: code, Purpose: "verifyEmail", Device: laptop}
	result, err := f.svc.VerifyOTP(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Email verified successfully", result.Message)
	require.NotNil(t, result.Tokens)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	user, err := f.store.Users().GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.OTP)
	assert.Nil(t, user.OTPExpires)
	_, trusted := user.ActiveDevice(laptop.DeviceID)
	assert.True(t, trusted)

	// The consumed code cannot be replayed.
	_, err = f.svc.VerifyOTP(ctx, in)
	requireCode(t, err, http.StatusBadRequest)
}

func TestLogin_TrustedDeviceSkipsOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := seedUser(t, f.store, "asha@example.com", models.RoleUser, true)
	require.NoError(t, f.store.Users().UpsertTrustedDevice(ctx, user.ID, &models.TrustedDevice{
		DeviceID: laptop.DeviceID, UserAgent: laptop.UserAgent, Platform: laptop.Platform, LastUsed: f.clock.Add(-time.Hour),
	}))

	f.clock = f.clock.Add(time.Minute)
	result, err := f.svc.Login(ctx, "asha@example.com", testPassword, laptop)
	require.NoError(t, err)

	assert.Equal(t, "User Login Successfully", result.Message)
	require.NotNil(t, result.Tokens)
	assert.Empty(t, result.OTPPurpose)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	stored, err := f.store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	device, ok := stored.ActiveDevice(laptop.DeviceID)
	require.True(t, ok)
	assert.WithinDuration(t, f.clock, device.LastUsed, time.Second)
}

func TestLogin_NewDeviceRequiresOTP(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.On("Send", mock.Anything, "asha@example.com", "Device Verification - Your OTP Code", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	seedUser(t, f.store, "asha@example.com", models.RoleUser, true)

	result, err := f.svc.Login(ctx, "asha@example.com", testPassword, laptop)
	require.NoError(t, err)
	assert.Nil(t, result.Tokens)
	assert.Equal(t, PurposeVerifyDevice, result.OTPPurpose)

	verified, err := f.svc.VerifyOTP(ctx, VerifyOTPInput{
		Email:   "asha@example.com",
		OTP:     f.pendingCode(t, "asha@example.com"),
		Purpose: string(PurposeVerifyDevice),
		Device:  laptop,
	})
	require.NoError(t, err)
	assert.Equal(t, "Device verified successfully", verified.Message)
	require.NotNil(t, verified.Tokens)

	again, err := f.svc.Login(ctx, "asha@example.com", testPassword, laptop)
	require.NoError(t, err)
	assert.NotNil(t, again.Tokens)
	f.mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestLogin_UnverifiedAccountGetsEmailOTP(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	seedUser(t, f.store, "asha@example.com", models.RoleUser, false)

	result, err := f.svc.Login(context.Background(), "asha@example.com", testPassword, laptop)
	require.NoError(t, err)
	assert.Nil(t, result.Tokens)
	assert.Equal(t, PurposeVerifyEmail, result.OTPPurpose)
	assert.NotEmpty(t, f.pendingCode(t, "asha@example.com"))
}

func TestLogin_Failures(t *testing.T) {
	f := newAuthFixture(t)
	seedUser(t, f.store, "asha@example.com", models.RoleUser, true)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "nobody@example.com", testPassword, laptop)
	requireCode(t, err, http.StatusUnauthorized)
	unknownMsg := err.Error()

	_, err = f.svc.Login(ctx, "asha@example.com", "wrong-password", laptop)
	requireCode(t, err, http.StatusUnauthorized)
	assert.Equal(t, unknownMsg, err.Error())

	_, err = f.svc.Login(ctx, "asha@example.com", testPassword, DeviceInfo{DeviceID: "x"})
	requireCode(t, err, http.StatusBadRequest)
}

func TestVerifyOTP_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Asha", "asha@example.com", testPassword)
	require.NoError(t, err)
	code := f.pendingCode(t, "asha@example.com")

	tests := []struct {
		name string
		in   VerifyOTPInput
		code int
	}{
		{"missing otp", VerifyOTPInput{Email: "asha@example.com", Purpose: "verifyEmail"}, http.StatusBadRequest},
		{"missing purpose", VerifyOTPInput{Email: "asha@example.com", OTP: code}, http.StatusBadRequest},
		{"unknown purpose", VerifyOTPInput{Email: "asha@example.com", OTP: code, Purpose: "login"}, http.StatusBadRequest},
		{"unknown email", VerifyOTPInput{Email: "x@example.com", OTP: code, Purpose: "verifyEmail"}, http.StatusNotFound},
		{"wrong code", VerifyOTPInput{Email: "asha@example.com", OTP: "000000", Purpose: "verifyEmail"}, http.StatusBadRequest},
		{"device before email", VerifyOTPInput{Email: "asha@example.com", OTP: code, Purpose: "verifyDevice", Device: laptop}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.VerifyOTP(ctx, tt.in)
			requireCode(t, err, tt.code)
		})
	}

	// None of the rejections consumed the code, but it does expire.
	assert.Equal(t, code, f.pendingCode(t, "asha@example.com"))
	f.clock = f.clock.Add(OTPTTL)
	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{Email: "asha@example.com", OTP: code, Purpose: "verifyEmail"})
	requireCode(t, err, http.StatusBadRequest)
}

func TestResendOTP_InvalidatesPreviousCode(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Asha", "asha@example.com", testPassword)
	require.NoError(t, err)
	first := f.pendingCode(t, "asha@example.com")

	msg, err := f.svc.ResendOTP(ctx, "asha@example.com", "verifyEmail")
	require.NoError(t, err)
	assert.Equal(t, "New OTP for verifyEmail sent successfully", msg)

	second := f.pendingCode(t, "asha@example.com")
	if second == first {
		t.Skip("random codes collided")
	}

	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{Email: "asha@example.com", OTP: first, Purpose: "verifyEmail"})
	requireCode(t, err, http.StatusBadRequest)

	_, err = f.svc.VerifyOTP(ctx, VerifyOTPInput{Email: "asha@example.com", OTP: second, Purpose: "verifyEmail"})
	assert.NoError(t, err)
}

func TestResendOTP_Rules(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	seedUser(t, f.store, "verified@example.com", models.RoleUser, true)
	seedUser(t, f.store, "pending@example.com", models.RoleUser, false)

	_, err := f.svc.ResendOTP(ctx, "verified@example.com", "verifyEmail")
	requireCode(t, err, http.StatusBadRequest)

	_, err = f.svc.ResendOTP(ctx, "pending@example.com", "verifyDevice")
	requireCode(t, err, http.StatusBadRequest)

	_, err = f.svc.ResendOTP(ctx, "ghost@example.com", "verifyEmail")
	requireCode(t, err, http.StatusNotFound)

	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	_, err = f.svc.ResendOTP(ctx, "pending@example.com", "verifyEmail")
	requireCode(t, err, http.StatusInternalServerError)

	user, err := f.store.Users().GetByEmail(ctx, "pending@example.com")
	require.NoError(t, err)
	assert.Empty(t, user.OTP, "a code that was never delivered must not be stored")
}

func TestForgotPassword_FullReset(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	ctx := context.Background()
	seedUser(t, f.store, "asha@example.com", models.RoleUser, true)

	result, err := f.svc.ForgotPassword(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, PurposeForgotPassword, result.OTPPurpose)

	verified, err := f.svc.VerifyOTP(ctx, VerifyOTPInput{
		Email:   "asha@example.com",
		OTP:     f.pendingCode(t, "asha@example.com"),
		Purpose: string(PurposeForgotPassword),
	})
	require.NoError(t, err)
	assert.Nil(t, verified.Tokens)
	assert.Equal(t, "OTP verified. You can now reset your password", verified.Message)

	requireCode(t, f.svc.ResetPassword(ctx, "asha@example.com", "newpass1", "newpass2"), http.StatusBadRequest)
	require.NoError(t, f.svc.ResetPassword(ctx, "asha@example.com", "newpass1", "newpass1"))

	_, err = f.svc.Login(ctx, "asha@example.com", testPassword, laptop)
	requireCode(t, err, http.StatusUnauthorized)
	login, err := f.svc.Login(ctx, "asha@example.com", "newpass1", laptop)
	require.NoError(t, err)
	assert.Equal(t, PurposeVerifyDevice, login.OTPPurpose)
}

func TestForgotPassword_RateLimited(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	ctx := context.Background()
	seedUser(t, f.store, "asha@example.com", models.RoleUser, true)

	_, err := f.svc.ForgotPassword(ctx, "asha@example.com")
	require.NoError(t, err)

	f.clock = f.clock.Add(30 * time.Second)
	_, err = f.svc.ForgotPassword(ctx, "asha@example.com")
	requireCode(t, err, http.StatusTooManyRequests)

	f.clock = f.clock.Add(31 * time.Second)
	_, err = f.svc.ForgotPassword(ctx, "asha@example.com")
	assert.NoError(t, err)

	_, err = f.svc.ForgotPassword(ctx, "ghost@example.com")
	requireCode(t, err, http.StatusNotFound)
}

func TestForgotPassword_UnverifiedGetsEmailOTP(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.acceptAll()
	seedUser(t, f.store, "asha@example.com", models.RoleUser, false)

	result, err := f.svc.ForgotPassword(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, PurposeVerifyEmail, result.OTPPurpose)
}

func TestRefreshAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := seedUser(t, f.store, "asha@example.com", models.RoleSeller, true)

	pair, err := f.svc.tokens.Issue(user)
	require.NoError(t, err)

	access, got, err := f.svc.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	claims, err := f.svc.tokens.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, claims.Role)

	_, _, err = f.svc.RefreshAccessToken(ctx, "")
	requireCode(t, err, http.StatusUnauthorized)
	_, _, err = f.svc.RefreshAccessToken(ctx, pair.AccessToken)
	requireCode(t, err, http.StatusUnauthorized)
}
