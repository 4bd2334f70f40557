package auth

import (
	"context"
	"strings"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/app"
	"github.com/OTRONTO-F/Rinsohot/internal/db"
	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const birthDateLayout = "2006-01-02"

// Service implements registration and login. It is the concrete side of
// the "authentication collaborator": everything downstream only consumes
// the verified user id.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	prefRepo *repository.PreferenceRepository
	tokens   *TokenManager
}

// NewService creates the auth service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		prefRepo: repository.NewPreferenceRepository(appCtx.DB),
		tokens:   NewTokenManager(appCtx.Cfg.JWT.Secret, appCtx.Cfg.JWT.TTL),
	}
}

// Tokens exposes the token manager so the router can build the auth
// middleware from the same secret.
func (s *Service) Tokens() *TokenManager { return s.tokens }

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender"`
}

// UserInfo is the public view of an account returned with a token.
type UserInfo struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult is the response of both Register and Login.
type AuthResult struct {
	Token          string   `json:"token"`
	User           UserInfo `json:"user"`
	HasPreferences bool     `json:"hasPreferences"`
}

// Register creates an account, hashes the password and issues a token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Email == "" || in.Password == "" {
		return nil, svcErr.Validation("email and password are required")
	}
	if in.FirstName == "" {
		return nil, svcErr.Validation("first name is required")
	}
	switch in.Gender {
	case "male", "female":
	default:
		return nil, svcErr.Validation("gender must be male or female")
	}
	birthDate, err := time.Parse(birthDateLayout, in.BirthDate)
	if err != nil {
		return nil, svcErr.Validation("birth_date must be YYYY-MM-DD")
	}

	exists, err := s.userRepo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if exists {
		return nil, svcErr.Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, svcErr.Internal("failed to hash password", err)
	}

	user := &db.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		BirthDate:    birthDate,
		Gender:       in.Gender,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, svcErr.Map(err)
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, svcErr.Internal("failed to issue token", err)
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID)
	return &AuthResult{
		Token: token,
		User: UserInfo{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	}, nil
}

// Login verifies credentials and issues a token. The result carries a
// hasPreferences flag so clients know whether to route to onboarding.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, svcErr.Validation("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if svcErr.KindOf(svcErr.Map(err)) == svcErr.KindNotFound {
			return nil, svcErr.Unauthenticated("Invalid email or password")
		}
		return nil, svcErr.Map(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, svcErr.Unauthenticated("Invalid email or password")
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, svcErr.Internal("failed to issue token", err)
	}

	hasPrefs, err := s.prefRepo.Has(ctx, user.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("user logged in", "user_id", user.ID)
	return &AuthResult{
		Token: token,
		User: UserInfo{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
		HasPreferences: hasPrefs,
	}, nil
}
