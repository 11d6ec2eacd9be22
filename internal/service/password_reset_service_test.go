package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-service/internal/audit"
	"realty-service/internal/events"
	"realty-service/internal/model"
)

type resetFixture struct {
	svc      *PasswordResetService
	admins   *fakeAdminRepo
	users    *fakeUserRepo
	agents   *fakeAgentRepo
	otps     *fakeOTPRepo
	cache    *fakeOTPCache
	notifier *fakeNotifier
	now      time.Time
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	f := &resetFixture{
		admins:   newFakeAdminRepo(),
		users:    newFakeUserRepo(),
		agents:   newFakeAgentRepo(),
		otps:     newFakeOTPRepo(),
		notifier: &fakeNotifier{},
		now:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	resolver := NewIdentityResolver(f.admins, f.users, f.agents, nil)
	f.svc = NewPasswordResetService(
		resolver, f.otps, nil,
		f.admins, f.users, f.agents,
		testHasher(), f.notifier,
		audit.NewRecorder(nil), events.NewPublisher(nil),
		5*time.Minute,
	).WithClock(func() time.Time { return f.now })

	return f
}

func newCachedResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	f := &resetFixture{
		admins:   newFakeAdminRepo(),
		users:    newFakeUserRepo(),
		agents:   newFakeAgentRepo(),
		otps:     newFakeOTPRepo(),
		cache:    newFakeOTPCache(),
		notifier: &fakeNotifier{},
		now:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	resolver := NewIdentityResolver(f.admins, f.users, f.agents, nil)
	f.svc = NewPasswordResetService(
		resolver, f.otps, f.cache,
		f.admins, f.users, f.agents,
		testHasher(), f.notifier,
		audit.NewRecorder(nil), events.NewPublisher(nil),
		5*time.Minute,
	).WithClock(func() time.Time { return f.now })

	return f
}

func (f *resetFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *resetFixture) addUser(t *testing.T, email, password string) *model.User {
	t.Helper()
	hash, err := testHasher().HashPassword(password)
	require.NoError(t, err)
	user := &model.User{Username: "testuser", Email: email, Password: hash}
	require.NoError(t, f.users.Create(user))
	return user
}

func TestRequestResetIssuesSixDigitCode(t *testing.T) {
	f := newResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")

	require.NoError(t, f.svc.RequestReset(context.Background(), "resident@example.com"))

	code := f.notifier.lastOTPCode()
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	assert.Equal(t, 1, f.otps.count())

	otp, err := f.otps.GetByCode(code)
	require.NoError(t, err)
	assert.Equal(t, model.KindUser, otp.Kind)
	assert.Equal(t, f.now.Add(5*time.Minute), otp.ExpiresAt)
}

func TestRequestResetUnknownEmail(t *testing.T) {
	f := newResetFixture(t)
	err := f.svc.RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.otps.count())
}

func TestSecondRequestInvalidatesFirstCode(t *testing.T) {
	f := newResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	first := f.notifier.lastOTPCode()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	second := f.notifier.lastOTPCode()

	assert.Equal(t, 1, f.otps.count())

	if first != second {
		assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "resident@example.com", first), ErrOTPInvalid)
	}
	assert.NoError(t, f.svc.VerifyOTP(ctx, "resident@example.com", second))
}

func TestVerifyOTPWithinWindow(t *testing.T) {
	f := newResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	code := f.notifier.lastOTPCode()

	f.advance(5*time.Minute - time.Second)
	assert.NoError(t, f.svc.VerifyOTP(ctx, "resident@example.com", code))
}

func TestVerifyOTPAtBoundaryIsExpiredAndDeleted(t *testing.T) {
	f := newResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	code := f.notifier.lastOTPCode()

	f.advance(5 * time.Minute)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "resident@example.com", code), ErrOTPExpired)
	assert.Zero(t, f.otps.count(), "expired OTP must be deleted on sight")
}

func TestVerifyOTPWrongEmail(t *testing.T) {
	f := newResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	f.addUser(t, "other@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	code := f.notifier.lastOTPCode()

	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "other@example.com", code), ErrOTPInvalid)
}

func TestVerifyOTPUnknownCode(t *testing.T) {
	f := newResetFixture(t)
	assert.ErrorIs(t, f.svc.VerifyOTP(context.Background(), "resident@example.com", "000000"), ErrOTPInvalid)
}

func TestResetPasswordOverwritesEveryMatchingTable(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()
	hasher := testHasher()

	// The same address exists in all three identity tables.
	email := "shared@example.com"
	oldHash, err := hasher.HashPassword("OldPw1!")
	require.NoError(t, err)
	require.NoError(t, f.admins.Create(&model.Admin{Username: "boss", Email: email, Password: oldHash}))
	require.NoError(t, f.users.Create(&model.User{Username: "resident", Email: email, Password: oldHash}))
	require.NoError(t, f.agents.Create(&model.Agent{UserName: "broker", Email: email, Password: oldHash}))

	require.NoError(t, f.svc.RequestReset(ctx, email))
	code := f.notifier.lastOTPCode()

	require.NoError(t, f.svc.ResetPassword(ctx, email, code, "NewPw2@", "NewPw2@"))

	admin, _ := f.admins.GetByEmail(email)
	user, _ := f.users.GetByEmail(email)
	agent, _ := f.agents.GetByEmail(email)
	for _, hash := range []string{admin.Password, user.Password, agent.Password} {
		ok, err := hasher.VerifyPassword("NewPw2@", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	// The reset does not retire the code; only expiry does.
	assert.Equal(t, 1, f.otps.count())
}

func TestResetPasswordRejectsEmptyAndMismatched(t *testing.T) {
	f := newResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	code := f.notifier.lastOTPCode()

	err := f.svc.ResetPassword(ctx, "resident@example.com", code, "", "")
	assert.Error(t, err)

	err = f.svc.ResetPassword(ctx, "resident@example.com", code, "NewPw2@", "Different2@")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestResetPasswordExpiredCode(t *testing.T) {
	f := newResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	code := f.notifier.lastOTPCode()

	f.advance(6 * time.Minute)
	err := f.svc.ResetPassword(ctx, "resident@example.com", code, "NewPw2@", "NewPw2@")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTPServedFromCache(t *testing.T) {
	f := newCachedResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	code := f.notifier.lastOTPCode()

	baseline := f.otps.getByCodeCalls
	assert.NoError(t, f.svc.VerifyOTP(ctx, "resident@example.com", code))
	assert.Equal(t, baseline, f.otps.getByCodeCalls, "cache hit must not touch the store")
}

func TestVerifyOTPFallsBackToStoreOnCacheMiss(t *testing.T) {
	f := newCachedResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	code := f.notifier.lastOTPCode()

	// Cold cache, as after a Redis restart.
	require.NoError(t, f.cache.DeleteOTP(code))
	assert.NoError(t, f.svc.VerifyOTP(ctx, "resident@example.com", code))
}

func TestSupersededCodeEvictedFromCache(t *testing.T) {
	f := newCachedResetFixture(t)
	f.addUser(t, "resident@example.com", "Start1!")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	first := f.notifier.lastOTPCode()

	require.NoError(t, f.svc.RequestReset(ctx, "resident@example.com"))
	second := f.notifier.lastOTPCode()

	if first != second {
		_, err := f.cache.GetOTP(first)
		assert.Error(t, err, "revoked code must not linger in the cache")
		assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "resident@example.com", first), ErrOTPInvalid)
	}
	assert.NoError(t, f.svc.VerifyOTP(ctx, "resident@example.com", second))
}

func TestResolverProbesAdminFirst(t *testing.T) {
	f := newResetFixture(t)

	email := "shared@example.com"
	require.NoError(t, f.users.Create(&model.User{Username: "resident", Email: email}))
	require.NoError(t, f.admins.Create(&model.Admin{Username: "boss", Email: email}))

	resolver := NewIdentityResolver(f.admins, f.users, f.agents, nil)
	ref, err := resolver.Resolve(email)
	require.NoError(t, err)
	assert.Equal(t, model.KindAdmin, ref.Kind)
}
