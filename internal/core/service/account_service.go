package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/primeshop/account-service/internal/api/metrics"
	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
	"github.com/primeshop/account-service/internal/core/token"
)

// Defaults applied to every publicly registered account.
const (
	defaultPromotion = 40000
	accountTypeBasic = "Basic"
)

// AccountService implements login, registration, and logout on top of the
// credential store and the token issuer.
type AccountService struct {
	repo     ports.UserRepository
	issuer   *token.Issuer
	sessions ports.SessionStore
	audit    ports.AuditSink
	log      zerolog.Logger
}

// NewAccountService wires the service. sessions and audit may be nil; the
// corresponding side channels are then skipped.
func NewAccountService(
	repo ports.UserRepository,
	issuer *token.Issuer,
	sessions ports.SessionStore,
	audit ports.AuditSink,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:     repo,
		issuer:   issuer,
		sessions: sessions,
		audit:    audit,
		log:      log,
	}
}

// Login verifies credentials and issues a signed session token. The result for
// an unknown username is byte-identical to the result for a wrong password so
// callers cannot probe which usernames exist.
func (s *AccountService) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	start := time.Now()

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.observeLogin(start, "invalid_credentials")
			s.record(domain.EventLoginFailed, username, "")
			return domain.LoginResult{Status: domain.LoginInvalidCredentials}, nil
		}
		return domain.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	// Inverted flag: LockoutEnabled=false means the account is locked.
	// See the field comment on domain.User.
	if user.Locked() {
		s.observeLogin(start, "locked")
		s.record(domain.EventLoginLocked, username, user.ID)
		s.log.Warn().Str("username", username).Msg("login rejected for locked account")
		return domain.LoginResult{Status: domain.LoginLocked}, nil
	}

	if !s.repo.CheckPassword(user, password) {
		s.observeLogin(start, "invalid_credentials")
		s.record(domain.EventLoginFailed, username, user.ID)
		return domain.LoginResult{Status: domain.LoginInvalidCredentials}, nil
	}

	roles, err := s.repo.GetRoles(ctx, user)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("login: load roles: %w", err)
	}

	signed, expiresAt, err := s.issuer.Issue(user, roles)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.SignIn(ctx, user.ID, expiresAt); err != nil {
			// The token is already issued; a missing session marker only
			// affects the layered sign-in state.
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record sign-in marker")
		}
	}

	s.observeLogin(start, "success")
	metrics.TokensIssuedTotal.Inc()
	s.record(domain.EventLoginSuccess, username, user.ID)
	s.log.Info().Str("username", username).Str("user_id", user.ID).Msg("login succeeded")

	return domain.LoginResult{
		Status:    domain.LoginSuccess,
		Token:     signed,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
	}, nil
}

// RegisterUser creates a public account with the default promotion balance and
// a "Basic" account type, then assigns the "User" role (created lazily).
func (s *AccountService) RegisterUser(ctx context.Context, in ports.RegisterUserInput) (*domain.User, error) {
	if err := s.checkDuplicate(ctx, in.Username, in.Email); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			metrics.RegistrationsTotal.WithLabelValues("user", "duplicate").Inc()
		}
		return nil, err
	}

	user := &domain.User{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		Phone:          in.Phone,
		AccountType:    accountTypeBasic,
		Promotion:      defaultPromotion,
		LockoutEnabled: true, // unlocked; see domain.User on the inverted polarity
	}

	created, err := s.repo.Create(ctx, user, in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("user", registerOutcome(err)).Inc()
		return nil, fmt.Errorf("register user: %w", err)
	}

	if err := s.assignRole(ctx, created, domain.RoleUser); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("user", "created").Inc()
	s.record(domain.EventUserRegistered, created.Username, created.ID)
	s.log.Info().Str("username", created.Username).Str("user_id", created.ID).Msg("user registered")

	return created, nil
}

// RegisterAdmin creates a privileged account and assigns the "Admin" role.
//
// NOTE: unlike RegisterUser there is no duplicate pre-check here; only the
// store's unique indexes reject collisions. The asymmetry is inherited
// behavior and is kept pending product-owner review.
func (s *AccountService) RegisterAdmin(ctx context.Context, in ports.RegisterAdminInput) (*domain.User, error) {
	user := &domain.User{
		Username:       in.Username,
		Email:          in.Email,
		LockoutEnabled: true,
	}

	created, err := s.repo.Create(ctx, user, in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("admin", registerOutcome(err)).Inc()
		return nil, fmt.Errorf("register admin: %w", err)
	}

	if err := s.assignRole(ctx, created, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("register admin: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("admin", "created").Inc()
	s.record(domain.EventAdminRegistered, created.Username, created.ID)
	s.log.Info().Str("username", created.Username).Str("user_id", created.ID).Msg("admin registered")

	return created, nil
}

// LogOut clears the server-side sign-in marker. Issued tokens stay valid until
// they expire; there is no blacklist.
func (s *AccountService) LogOut(ctx context.Context, userID, username string) error {
	if s.sessions != nil {
		if err := s.sessions.SignOut(ctx, userID); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	s.record(domain.EventLogout, username, userID)
	return nil
}

// checkDuplicate rejects a registration when the username or email is taken.
func (s *AccountService) checkDuplicate(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrDuplicateIdentity
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("register user: %w", err)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateIdentity
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("register user: %w", err)
	}

	return nil
}

// assignRole ensures the role exists (lazy, idempotent) and attaches it.
func (s *AccountService) assignRole(ctx context.Context, user *domain.User, role string) error {
	exists, err := s.repo.RoleExists(ctx, role)
	if err != nil {
		return fmt.Errorf("check role %s: %w", role, err)
	}
	if !exists {
		if err := s.repo.EnsureRole(ctx, role); err != nil {
			return fmt.Errorf("ensure role %s: %w", role, err)
		}
	}
	if err := s.repo.AddToRole(ctx, user, role); err != nil {
		return fmt.Errorf("assign role %s: %w", role, err)
	}
	return nil
}

func (s *AccountService) observeLogin(start time.Time, result string) {
	metrics.LoginsTotal.WithLabelValues(result).Inc()
	metrics.LoginDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

func (s *AccountService) record(t domain.SecurityEventType, username, userID string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.SecurityEvent{
		Type:     t,
		Username: username,
		UserID:   userID,
		At:       time.Now().UTC(),
	})
}

func registerOutcome(err error) string {
	if errors.Is(err, domain.ErrDuplicateIdentity) {
		return "duplicate"
	}
	return "error"
}
