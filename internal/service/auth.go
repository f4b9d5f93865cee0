package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/niu-24-19333-stack/ScamShield/internal/db"
	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128

	resetTokenTTL        = time.Hour
	verificationTokenTTL = 24 * time.Hour

	mailTimeout = 10 * time.Second
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user not found or inactive")
	ErrResetTokenInvalid  = errors.New("invalid reset token")
	ErrVerifyTokenInvalid = errors.New("invalid verification token")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// userStore is the persistence surface the orchestrator needs. *db.Postgres
// satisfies it; tests use fakes.
type userStore interface {
	InsertUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*model.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	DeactivateUser(ctx context.Context, userID string) error
	InsertDefaultSettings(ctx context.Context, userID string) error
	InsertDefaultSubscription(ctx context.Context, userID string) error
}

// mailer delivers transactional email. Failures are logged, never propagated:
// the stored token is the source of truth, the email is a courtesy.
type mailer interface {
	SendVerification(ctx context.Context, email, token, name string) error
	SendPasswordReset(ctx context.Context, email, token, name string) error
	SendWelcome(ctx context.Context, email, name string) error
}

// AuthService composes the hasher, the token codec, the revocation ledger and
// the single-use action tokens into the register/login/refresh/logout flows.
// It holds no mutable state of its own; every operation is one unit of work
// against the store.
type AuthService struct {
	users  userStore
	codec  *TokenCodec
	ledger *RevocationLedger
	mail   mailer
}

func NewAuthService(users userStore, codec *TokenCodec, ledger *RevocationLedger, mail mailer) *AuthService {
	return &AuthService{
		users:  users,
		codec:  codec,
		ledger: ledger,
		mail:   mail,
	}
}

func (s *AuthService) AccessTTL() time.Duration { return s.codec.AccessTTL() }

// Register creates a local, unverified user plus its default settings and
// free-tier subscription rows, and returns a token pair. The unique index on
// users.email decides races between concurrent registrations; the up-front
// lookup only exists for a friendlier fast path.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, *model.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" || len(name) > 100 {
		return nil, nil, ErrInvalidInput
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !db.IsNoRows(err) {
		return nil, nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}
	verifyToken, err := GenerateActionToken()
	if err != nil {
		return nil, nil, err
	}
	verifyExpires := time.Now().Add(verificationTokenTTL)

	user := &model.User{
		ID:                       uuid.NewString(),
		Email:                    email,
		PasswordHash:             &hash,
		FullName:                 name,
		Phone:                    phone,
		Role:                     model.RoleUser,
		Provider:                 model.ProviderLocal,
		IsActive:                 true,
		IsVerified:               false,
		VerificationToken:        &verifyToken,
		VerificationTokenExpires: &verifyExpires,
	}

	created, err := s.users.InsertUser(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	if err := s.users.InsertDefaultSettings(ctx, created.ID); err != nil {
		return nil, nil, err
	}
	if err := s.users.InsertDefaultSubscription(ctx, created.ID); err != nil {
		return nil, nil, err
	}

	s.sendMail(func(ctx context.Context) error {
		return s.mail.SendVerification(ctx, created.Email, verifyToken, created.FullName)
	}, "verification", created.Email)
	s.sendMail(func(ctx context.Context) error {
		return s.mail.SendWelcome(ctx, created.Email, created.FullName)
	}, "welcome", created.Email)

	pair, err := s.codec.IssuePair(created.ID)
	if err != nil {
		return nil, nil, err
	}
	return created, pair, nil
}

// Login verifies credentials and mints a token pair. Unknown email and wrong
// password collapse into the same error so responses carry no enumeration
// signal.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.User, *model.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if user.PasswordHash == nil || !CheckPassword(req.Password, *user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDeactivated
	}

	now := time.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLogin = &now

	pair, err := s.codec.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// is checked against the ledger first; an access token presented here fails
// the type check. The old refresh token deliberately stays usable until its
// own expiry or an explicit logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrTokenInvalid
	}

	revoked, err := s.ledger.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		// Expired, tampered and malformed refresh tokens are
		// indistinguishable to callers.
		if errors.Is(err, ErrTokenExpired) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if claims.TokenType != TokenRefresh {
		return nil, ErrTokenInvalid
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserInactive
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return s.codec.IssuePair(user.ID)
}

// Logout blacklists the presented refresh token until its original expiry.
// Unparseable or already-expired tokens are ignored; logout never fails for
// semantic reasons. Access tokens issued earlier keep working until their own
// short expiry, a documented trade-off of stateless sessions.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	expiry, err := s.codec.ExpiryOf(refreshToken)
	if err != nil {
		return nil
	}
	return s.ledger.Revoke(ctx, refreshToken, expiry)
}

// RequestPasswordReset stores a one-hour reset token on the account and
// emails it. The response is uniform whether or not the email exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		return err
	}

	token, err := GenerateActionToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpires = &expires
	if err := s.users.SaveUser(ctx, user); err != nil {
		return err
	}

	s.sendMail(func(ctx context.Context) error {
		return s.mail.SendPasswordReset(ctx, user.Email, token, user.FullName)
	}, "password reset", user.Email)

	return nil
}

// ResetPassword consumes a reset token: the new hash is written and the token
// cleared in the same save, so the token cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrResetTokenInvalid
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		return ErrTokenExpired
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = &hash
	user.ResetToken = nil
	user.ResetTokenExpires = nil
	return s.users.SaveUser(ctx, user)
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrVerifyTokenInvalid
	}

	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrVerifyTokenInvalid
		}
		return nil, err
	}
	if user.VerificationTokenExpires != nil && user.VerificationTokenExpires.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpires = nil
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword rehashes for a logged-in user after checking the current
// password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil || !CheckPassword(currentPassword, *user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = &hash
	return s.users.SaveUser(ctx, user)
}

// DeactivateAccount soft-deletes; the row is kept.
func (s *AuthService) DeactivateAccount(ctx context.Context, userID string) error {
	return s.users.DeactivateUser(ctx, userID)
}

// LoginWithProvider logs in (or creates on first login) a federated account
// from a verified provider assertion. Federated users start with no password
// hash; they can set one later via the reset flow.
func (s *AuthService) LoginWithProvider(ctx context.Context, info model.OAuthUserInfo) (*model.User, *model.TokenResponse, error) {
	if !info.Provider.Valid() || info.Provider == model.ProviderLocal {
		return nil, nil, ErrInvalidInput
	}
	email := normalizeEmail(info.Email)
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, nil, err
		}
		user, err = s.createFederatedUser(ctx, email, info)
		if err != nil {
			return nil, nil, err
		}
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDeactivated
	}

	now := time.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLogin = &now

	pair, err := s.codec.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// AuthenticateAccess resolves a bearer access token to the live user behind
// it. Used by the request middleware.
func (s *AuthService) AuthenticateAccess(ctx context.Context, token string) (*model.AuthUser, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenAccess {
		return nil, ErrTokenInvalid
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return &model.AuthUser{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (s *AuthService) createFederatedUser(ctx context.Context, email string, info model.OAuthUserInfo) (*model.User, error) {
	name := strings.TrimSpace(info.FullName)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &model.User{
		ID:         uuid.NewString(),
		Email:      email,
		FullName:   name,
		Role:       model.RoleUser,
		Provider:   info.Provider,
		IsActive:   true,
		IsVerified: true,
	}

	created, err := s.users.InsertUser(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race to a concurrent first login; use the winner's row.
			return s.users.GetUserByEmail(ctx, email)
		}
		return nil, err
	}

	if err := s.users.InsertDefaultSettings(ctx, created.ID); err != nil {
		return nil, err
	}
	if err := s.users.InsertDefaultSubscription(ctx, created.ID); err != nil {
		return nil, err
	}

	s.sendMail(func(ctx context.Context) error {
		return s.mail.SendWelcome(ctx, created.Email, created.FullName)
	}, "welcome", created.Email)

	return created, nil
}

// sendMail runs one delivery in the background with a bounded timeout.
func (s *AuthService) sendMail(send func(ctx context.Context) error, kind, email string) {
	if s.mail == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			log.Printf("[Auth] Failed to send %s email to %s: %v", kind, email, err)
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if len(email) < 3 || len(email) > 254 {
		return ErrInvalidInput
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return ErrInvalidInput
	}
	return nil
}

// validatePassword enforces the registration policy: length bounds plus at
// least one uppercase, one lowercase and one digit.
func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrInvalidInput
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrInvalidInput
	}
	return nil
}

func normalizePhone(phone string) (*string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, phone)
	digits := strings.TrimPrefix(cleaned, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return nil, ErrInvalidInput
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return nil, ErrInvalidInput
		}
	}
	return &cleaned, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
