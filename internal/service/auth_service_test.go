package service

import (
	"testing"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, e *env, email string) *dto.LoginResponse {
	t.Helper()
	resp, err := e.authSvc.Register(e.ctx, dto.RegisterRequest{
		Name:        "Asha",
		CompanyName: "Asha Offset",
		Email:       email,
		Phone:       ptr("98765 43210"),
		Password:    "correct horse",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_CreatesClientWithTrial(t *testing.T) {
	e := newEnv(t)
	e.authSvc.now = time.Now
	e.subSvc.now = time.Now

	resp := register(t, e, " Asha@Offset.TEST ")
	assert.Equal(t, "asha@offset.test", resp.User.Email)
	assert.Equal(t, model.RoleClient, resp.User.Role)
	require.NotNil(t, resp.User.Phone)
	assert.Equal(t, "+919876543210", *resp.User.Phone)
	require.NotNil(t, resp.User.Subscription)
	assert.Equal(t, model.SubscriptionTrial, resp.User.Subscription.Status)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	tok, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.EqualValues(t, resp.User.ID, claims["user_id"])
	assert.Equal(t, TokenAccess, claims["token_type"])
	assert.Equal(t, model.RoleClient, claims["role"])

	_, err = e.authSvc.Register(e.ctx, dto.RegisterRequest{
		Name: "Other", CompanyName: "Other", Email: "asha@offset.test", Password: "another password",
	})
	var c *apierror.ConflictError
	require.ErrorAs(t, err, &c)

	var subs int64
	require.NoError(t, e.db.Model(&model.Subscription{}).Count(&subs).Error)
	assert.EqualValues(t, 1, subs, "duplicate registration must roll back")
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name  string
		req   dto.RegisterRequest
		field string
	}{
		{"bad email", dto.RegisterRequest{Name: "A", CompanyName: "B", Email: "nope", Password: "12345678"}, "email"},
		{"short password", dto.RegisterRequest{Name: "A", CompanyName: "B", Email: "a@b.test", Password: "123"}, "password"},
		{"no company", dto.RegisterRequest{Name: "A", Email: "a@b.test", Password: "12345678"}, "companyName"},
		{"bad phone", dto.RegisterRequest{Name: "A", CompanyName: "B", Email: "a@b.test", Password: "12345678", Phone: ptr("12")}, "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.authSvc.Register(e.ctx, tc.req)
			var v *apierror.ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tc.field, v.Field)
		})
	}
}

func TestLoginAndRefresh(t *testing.T) {
	e := newEnv(t)
	e.authSvc.now = time.Now
	e.subSvc.now = time.Now
	reg := register(t, e, "asha@offset.test")

	_, err := e.authSvc.Login(e.ctx, dto.LoginRequest{Email: "asha@offset.test", Password: "wrong"})
	var u *apierror.UnauthorizedError
	require.ErrorAs(t, err, &u)

	_, err = e.authSvc.Login(e.ctx, dto.LoginRequest{Email: "ghost@offset.test", Password: "whatever"})
	require.ErrorAs(t, err, &u)

	login, err := e.authSvc.Login(e.ctx, dto.LoginRequest{Email: "ASHA@offset.test", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	require.NotNil(t, login.User.Subscription)

	_, err = e.authSvc.Refresh(e.ctx, login.AccessToken)
	require.ErrorAs(t, err, &u, "access tokens cannot refresh")

	refreshed, err := e.authSvc.Refresh(e.ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = e.authSvc.SetActive(e.ctx, reg.User.ID, false)
	require.NoError(t, err)
	_, err = e.authSvc.Login(e.ctx, dto.LoginRequest{Email: "asha@offset.test", Password: "correct horse"})
	var f *apierror.ForbiddenError
	require.ErrorAs(t, err, &f)
	_, err = e.authSvc.Refresh(e.ctx, login.RefreshToken)
	require.ErrorAs(t, err, &f)
}

func TestListTenants(t *testing.T) {
	e := newEnv(t)
	register(t, e, "asha@offset.test")
	register(t, e, "ravi@flexo.test")
	admin := &model.User{Name: "Root", Email: "root@printscrap.test", PasswordHash: "x", Role: model.RoleSuperAdmin, Active: true}
	require.NoError(t, e.users.CreateTx(e.db, admin))

	page, err := e.authSvc.ListTenants(e.ctx, "", dto.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total, "super admins are not tenants")

	page, err = e.authSvc.ListTenants(e.ctx, "FLEXO", dto.PageQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "ravi@flexo.test", page.Data[0].Email)

	_, err = e.authSvc.SetActive(e.ctx, admin.ID, false)
	var f *apierror.ForbiddenError
	require.ErrorAs(t, err, &f)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.Contains(t, hash, "$2a$12$")
}
