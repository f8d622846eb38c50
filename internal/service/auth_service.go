package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
	"github.com/roamio-app/roamio-backend/internal/util"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrWeakPassword       = errors.New("password does not meet requirements")
)

// OTPSender delivers verification and password-reset codes out of band.
type OTPSender interface {
	SendVerification(ctx context.Context, email, otp string) error
	SendPasswordReset(ctx context.Context, email, otp string) error
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users     ports.UserRepository
	jwt       *util.JWTManager
	mailer    OTPSender
	googleAud string
	otpTTL    time.Duration
	otpDigits int

	now func() time.Time
}

func NewAuthService(users ports.UserRepository, jwt *util.JWTManager, mailer OTPSender, googleAud string, otpTTL time.Duration, otpDigits int) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 15 * time.Minute
	}
	if otpDigits <= 0 {
		otpDigits = 6
	}
	return &AuthService{
		users:     users,
		jwt:       jwt,
		mailer:    mailer,
		googleAud: googleAud,
		otpTTL:    otpTTL,
		otpDigits: otpDigits,
		now:       time.Now,
	}
}

// Register creates an unverified account and emails a verification code. The
// nickname is derived from the email local part, disambiguated with a "#N"
// suffix when taken.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidCredentials)
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}
	nickname, err := s.deriveNickname(ctx, email)
	if err != nil {
		return nil, err
	}
	otp, err := util.GenerateNumericOTP(s.otpDigits)
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.otpTTL)

	user := &domain.User{
		Email:           email,
		Nickname:        nickname,
		PasswordHash:    hash,
		PasswordSalt:    salt,
		Role:            domain.UserRoleUser,
		VerifyOTP:       &otp,
		VerifyExpiresAt: &expiresAt,
	}

	stored, err := s.users.Create(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.mailer != nil {
		if mailErr := s.mailer.SendVerification(ctx, email, otp); mailErr != nil {
			log.Printf("auth: verification mail to %s failed: %v", email, mailErr)
		}
	}
	return stored, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// LoginWithGoogle validates the Google ID token and signs the matching user
// in, creating a pre-verified account on first sight of the email.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idTok string) (*AuthResult, error) {
	payload, err := idtoken.Validate(ctx, idTok, s.googleAud)
	if err != nil {
		return nil, fmt.Errorf("%w: google token rejected", ErrInvalidCredentials)
	}
	email, _ := payload.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: google token missing email", ErrInvalidCredentials)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		nickname, nickErr := s.deriveNickname(ctx, email)
		if nickErr != nil {
			return nil, nickErr
		}
		user, err = s.users.Create(ctx, &domain.User{
			Email:    email,
			Nickname: nickname,
			Role:     domain.UserRoleUser,
			Verified: true,
		})
		if err != nil {
			return nil, err
		}
	}
	return s.issueToken(user)
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Verified {
		return nil
	}
	if !otpMatches(user.VerifyOTP, user.VerifyExpiresAt, otp, s.now()) {
		return ErrInvalidOTP
	}

	user.Verified = true
	user.VerifyOTP = nil
	user.VerifyExpiresAt = nil
	return s.users.Update(ctx, user)
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Verified {
		return nil
	}

	otp, err := util.GenerateNumericOTP(s.otpDigits)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.otpTTL)
	user.VerifyOTP = &otp
	user.VerifyExpiresAt = &expiresAt
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if s.mailer == nil {
		return errors.New("mailer not configured")
	}
	return s.mailer.SendVerification(ctx, user.Email, otp)
}

// RequestPasswordReset issues a reset code. An unknown email reports success
// so the endpoint cannot be used to probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	otp, err := util.GenerateNumericOTP(s.otpDigits)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.otpTTL)
	user.ResetOTP = &otp
	user.ResetExpiresAt = &expiresAt
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if s.mailer == nil {
		return errors.New("mailer not configured")
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, otp)
}

func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !otpMatches(user.ResetOTP, user.ResetExpiresAt, otp, s.now()) {
		return ErrInvalidOTP
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt
	user.ResetOTP = nil
	user.ResetExpiresAt = nil
	return s.users.Update(ctx, user)
}

// Authenticate resolves a bearer token to its current user record. The user
// row is reloaded so role or verification changes take effect without
// waiting for token expiry.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Nickname, string(user.Role), user.Verified)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) deriveNickname(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		base = "traveler"
	}

	taken, err := s.users.CountNicknamePrefix(ctx, base)
	if err != nil {
		return "", err
	}
	if taken == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s#%d", base, taken+1), nil
}

func otpMatches(stored *string, expiresAt *time.Time, candidate string, now time.Time) bool {
	if stored == nil || expiresAt == nil || candidate == "" {
		return false
	}
	if now.After(*expiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(candidate)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
