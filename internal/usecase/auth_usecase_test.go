package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type AdminRepoMock struct{ mock.Mock }

func (m *AdminRepoMock) FindByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.AdminUser)
	return u, args.Error(1)
}

func (m *AdminRepoMock) Upsert(ctx context.Context, admin model.AdminUser) (model.AdminUser, error) {
	args := m.Called(ctx, admin)
	u, _ := args.Get(0).(model.AdminUser)
	return u, args.Error(1)
}

type stubIssuer struct{}

func (stubIssuer) Issue(email string, name string, now time.Time) (string, time.Time, error) {
	return "token-" + email, now.Add(time.Hour), nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	admins := new(AdminRepoMock)
	uc := usecase.NewAuthUsecase(admins, stubIssuer{}, fixedClock{t: testNow})

	admins.On("FindByEmail", mock.Anything, "admin@cafeteria.cl").
		Return(model.AdminUser{
			Email:        "admin@cafeteria.cl",
			Name:         "admin",
			PasswordHash: hashOf(t, "secreto"),
		}, nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    " Admin@Cafeteria.CL ",
		Password: "secreto",
	})
	require.NoError(t, err)
	assert.Equal(t, "token-admin@cafeteria.cl", out.AccessToken)
	assert.Equal(t, "admin", out.Name)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	admins := new(AdminRepoMock)
	uc := usecase.NewAuthUsecase(admins, stubIssuer{}, fixedClock{t: testNow})

	admins.On("FindByEmail", mock.Anything, "admin@cafeteria.cl").
		Return(model.AdminUser{Email: "admin@cafeteria.cl", PasswordHash: hashOf(t, "secreto")}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "admin@cafeteria.cl",
		Password: "otra",
	})
	assertHTTPStatus(t, err, 401)
}

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	admins := new(AdminRepoMock)
	uc := usecase.NewAuthUsecase(admins, stubIssuer{}, fixedClock{t: testNow})

	admins.On("FindByEmail", mock.Anything, "nadie@cafeteria.cl").
		Return(model.AdminUser{}, repo.ErrNotFound)

	// メールの存在有無で応答を変えない
	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "nadie@cafeteria.cl",
		Password: "secreto",
	})
	assertHTTPStatus(t, err, 401)
}

func TestAuthUsecase_Login_MissingFields(t *testing.T) {
	admins := new(AdminRepoMock)
	uc := usecase.NewAuthUsecase(admins, stubIssuer{}, fixedClock{t: testNow})

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "", Password: ""})
	assertHTTPStatus(t, err, 400)
	admins.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}
