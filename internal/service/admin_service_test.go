package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-service/internal/audit"
	"realty-service/internal/model"
)

type adminFixture struct {
	svc    *AdminService
	admins *fakeAdminRepo
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{admins: newFakeAdminRepo()}
	f.svc = NewAdminService(f.admins, nil, testHasher(), audit.NewRecorder(nil))
	return f
}

func validAdminRegistration() *AdminRegistration {
	return &AdminRegistration{
		Username: "rootadmin",
		Fullname: "Priya Sharma",
		Email:    "priya@example.com",
		Password: "Secret1!",
		MobileNo: "9000000001",
	}
}

func TestRegisterAdmin(t *testing.T) {
	f := newAdminFixture(t)

	admin, err := f.svc.Register(context.Background(), validAdminRegistration())
	require.NoError(t, err)

	assert.NotEmpty(t, admin.AdminID)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, model.StatusActive, admin.Status)
	assert.NotEqual(t, "Secret1!", admin.Password, "plaintext password must never be stored")
	assert.NotEmpty(t, admin.MobileHash)

	ok, err := testHasher().VerifyPassword("Secret1!", admin.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterAdminValidation(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*AdminRegistration)
	}{
		{"bad username", func(r *AdminRegistration) { r.Username = "admin#1" }},
		{"bad email", func(r *AdminRegistration) { r.Email = "priya@" }},
		{"password missing digit", func(r *AdminRegistration) { r.Password = "Secrets!" }},
		{"bad phone", func(r *AdminRegistration) { r.MobileNo = "12345" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validAdminRegistration()
			tt.mutate(reg)
			_, err := f.svc.Register(ctx, reg)
			assert.Error(t, err)
		})
	}
}

func TestRegisterAdminDuplicates(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validAdminRegistration())
	require.NoError(t, err)

	dupEmail := validAdminRegistration()
	dupEmail.Username = "otheradmin"
	_, err = f.svc.Register(ctx, dupEmail)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	dupUsername := validAdminRegistration()
	dupUsername.Email = "other@example.com"
	_, err = f.svc.Register(ctx, dupUsername)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAdminLogin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, validAdminRegistration())
	require.NoError(t, err)

	admin, err := f.svc.Login(ctx, "rootadmin", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, registered.AdminID, admin.AdminID)

	_, err = f.svc.Login(ctx, "rootadmin", "Wrong1!x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetAdminLookups(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, validAdminRegistration())
	require.NoError(t, err)

	byID, err := f.svc.GetAdmin(ctx, registered.AdminID)
	require.NoError(t, err)
	assert.Equal(t, "rootadmin", byID.Username)

	byName, err := f.svc.GetAdminByUsername(ctx, "rootadmin")
	require.NoError(t, err)
	assert.Equal(t, registered.AdminID, byName.AdminID)

	_, err = f.svc.GetAdmin(ctx, "admin-ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetAdminByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAdminPartialFields(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, validAdminRegistration())
	require.NoError(t, err)

	updated, err := f.svc.UpdateAdmin(ctx, registered.AdminID, &AdminUpdate{Fullname: "Priya S Sharma"})
	require.NoError(t, err)
	assert.Equal(t, "Priya S Sharma", updated.Fullname)
	assert.Equal(t, registered.MobileHash, updated.MobileHash, "unset mobile keeps stored value")

	_, err = f.svc.UpdateAdmin(ctx, registered.AdminID, &AdminUpdate{MobileNo: "999"})
	assert.Error(t, err)

	_, err = f.svc.UpdateAdmin(ctx, "admin-ghost", &AdminUpdate{Fullname: "Nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAdmin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, validAdminRegistration())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAdmin(ctx, registered.AdminID))
	assert.ErrorIs(t, f.svc.DeleteAdmin(ctx, registered.AdminID), ErrNotFound)
}

func TestListAdmins(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validAdminRegistration())
	require.NoError(t, err)

	second := validAdminRegistration()
	second.Username = "secondadmin"
	second.Email = "second@example.com"
	_, err = f.svc.Register(ctx, second)
	require.NoError(t, err)

	admins, err := f.svc.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 2)
}
