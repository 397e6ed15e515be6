package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// アクセストークンの署名はmain側のjwtIssuerが持つ
type TokenIssuer interface {
	Issue(email string, name string, now time.Time) (token string, expiresAt time.Time, err error)
}

type AuthUsecase struct {
	admins repo.AdminUserRepository
	issuer TokenIssuer
	clock  Clock
}

func NewAuthUsecase(admins repo.AdminUserRepository, issuer TokenIssuer, clock Clock) *AuthUsecase {
	return &AuthUsecase{admins: admins, issuer: issuer, clock: clock}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginOutput struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	admin, err := u.admins.FindByEmail(ctx, email)
	if err != nil {
		// 存在しないemailでも同じ401を返す
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expiresAt, err := u.issuer.Issue(admin.Email, admin.Name, u.clock.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "token issue failed")
	}

	return LoginOutput{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Name:        admin.Name,
		Email:       admin.Email,
	}, nil
}

// 起動時のシード用。既存emailなら上書き
func SeedAdmin(ctx context.Context, admins repo.AdminUserRepository, email, password, name string) (model.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.AdminUser{}, err
	}
	return admins.Upsert(ctx, model.AdminUser{
		Email:        strings.TrimSpace(strings.ToLower(email)),
		Name:         name,
		PasswordHash: string(hash),
	})
}
