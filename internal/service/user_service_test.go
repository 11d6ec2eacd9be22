package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-service/internal/audit"
	"realty-service/internal/events"
	"realty-service/internal/model"
)

type userFixture struct {
	svc      *UserService
	users    *fakeUserRepo
	notifier *fakeNotifier
	now      time.Time
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:    newFakeUserRepo(),
		notifier: &fakeNotifier{},
		now:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewUserService(
		f.users, nil, testHasher(), f.notifier,
		audit.NewRecorder(nil), events.NewPublisher(nil),
		5*time.Minute,
	).WithClock(func() time.Time { return f.now })
	return f
}

func (f *userFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func validUserRegistration() *UserRegistration {
	return &UserRegistration{
		Username:        "ananya",
		Fullname:        "Ananya Rao",
		Email:           "ananya@example.com",
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
		MobileNo:        "9123456780",
		Address:         "42 Green Park, Delhi",
		Gender:          "Female",
	}
}

func TestRegisterTemporaryUserEmbedsOTP(t *testing.T) {
	f := newUserFixture(t)

	temp, err := f.svc.RegisterTemporary(context.Background(), validUserRegistration())
	require.NoError(t, err)

	assert.Regexp(t, `^\d{6}$`, temp.OTP)
	assert.Equal(t, f.now.Add(5*time.Minute), temp.OTPExpiry)
	assert.Equal(t, model.StatusPending, temp.Status)
	assert.NotEqual(t, "Secret1!", temp.Password, "password stored hashed")

	// The mailed code is the stored code.
	assert.Equal(t, temp.OTP, f.notifier.lastOTPCode())

	// Nothing live yet.
	_, err = f.users.GetByEmail("ananya@example.com")
	assert.Error(t, err)
}

func TestRegisterTemporaryUserValidation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*UserRegistration)
	}{
		{"username with digits", func(r *UserRegistration) { r.Username = "ananya99" }},
		{"bad email", func(r *UserRegistration) { r.Email = "not-an-email" }},
		{"weak password", func(r *UserRegistration) { r.Password, r.ConfirmPassword = "secret", "secret" }},
		{"short mobile", func(r *UserRegistration) { r.MobileNo = "12345" }},
		{"unknown gender", func(r *UserRegistration) { r.Gender = "Robot" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validUserRegistration()
			tt.mutate(reg)
			_, err := f.svc.RegisterTemporary(ctx, reg)
			assert.Error(t, err)
		})
	}
}

func TestRegisterTemporaryUserPasswordMismatch(t *testing.T) {
	f := newUserFixture(t)

	reg := validUserRegistration()
	reg.ConfirmPassword = "Other2@x"
	_, err := f.svc.RegisterTemporary(context.Background(), reg)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestRegisterTemporaryUserDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Create(&model.User{
		Username: "existing",
		Email:    "ananya@example.com",
	}))

	_, err := f.svc.RegisterTemporary(ctx, validUserRegistration())
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestVerifyOTPPromotesUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	temp, err := f.svc.RegisterTemporary(ctx, validUserRegistration())
	require.NoError(t, err)

	user, err := f.svc.VerifyOTP(ctx, f.notifier.lastOTPCode())
	require.NoError(t, err)

	assert.True(t, user.Verified)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.StatusActive, user.Status)
	assert.Equal(t, temp.Email, user.Email)
	assert.Equal(t, temp.Password, user.Password, "hash carried over unchanged")

	// Temporary row consumed; the code cannot verify twice.
	_, err = f.users.GetTemporaryByID(temp.TempUserID)
	assert.Error(t, err)
	_, err = f.svc.VerifyOTP(ctx, temp.OTP)
	assert.ErrorIs(t, err, ErrOTPInvalid)
}

func TestVerifyOTPUnknownRegistrationCode(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.VerifyOTP(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrOTPInvalid)
}

func TestVerifyOTPExpiredRegistration(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterTemporary(ctx, validUserRegistration())
	require.NoError(t, err)
	code := f.notifier.lastOTPCode()

	// Exactly at expiry is already expired.
	f.advance(5 * time.Minute)
	_, err = f.svc.VerifyOTP(ctx, code)
	assert.ErrorIs(t, err, ErrOTPExpired)

	// Expiry never created a live user.
	_, err = f.users.GetByEmail("ananya@example.com")
	assert.Error(t, err)
}

func (f *userFixture) registerAndVerify(t *testing.T) *model.User {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.RegisterTemporary(ctx, validUserRegistration())
	require.NoError(t, err)
	user, err := f.svc.VerifyOTP(ctx, f.notifier.lastOTPCode())
	require.NoError(t, err)
	return user
}

func TestUserLogin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	user := f.registerAndVerify(t)

	got, err := f.svc.Login(ctx, "ananya", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)

	_, err = f.svc.Login(ctx, "ananya", "Wrong1!x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "nobody", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUserPartialFields(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	user := f.registerAndVerify(t)

	updated, err := f.svc.UpdateUser(ctx, user.UserID, &UserUpdate{
		Fullname: "Ananya R. Rao",
		Address:  "7 Hill Road, Mumbai",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ananya R. Rao", updated.Fullname)
	assert.Equal(t, "7 Hill Road, Mumbai", updated.Address)
	assert.Equal(t, user.MobileNo, updated.MobileNo, "unset fields keep stored values")

	_, err = f.svc.UpdateUser(ctx, user.UserID, &UserUpdate{Gender: "Robot"})
	assert.Error(t, err)
}

func TestUserChangePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	user := f.registerAndVerify(t)

	require.NoError(t, f.svc.ChangePassword(ctx, user.UserID, "Secret1!", "NewPw2@"))

	_, err := f.svc.Login(ctx, "ananya", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "ananya", "NewPw2@")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, user.UserID, "Wrong1!x", "Next3#a"), ErrInvalidCredentials)
}

func TestUserProfilePictureLifecycle(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	user := f.registerAndVerify(t)

	_, err := f.svc.UpdateUser(ctx, user.UserID, &UserUpdate{
		ProfilePicture: []byte("pic-bytes"),
		ImageFilename:  "me.jpg",
	})
	require.NoError(t, err)

	got, err := f.svc.GetUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, []byte("pic-bytes"), got.ProfilePicture)

	require.NoError(t, f.svc.DeleteProfilePicture(ctx, user.UserID))
	got, err = f.svc.GetUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.Empty(t, got.ProfilePicture)
}

func TestDeleteUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	user := f.registerAndVerify(t)

	require.NoError(t, f.svc.DeleteUser(ctx, user.UserID))
	_, err := f.svc.GetUser(ctx, user.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, user.UserID), ErrNotFound)
}
