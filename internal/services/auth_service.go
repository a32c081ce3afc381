package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"
	"bizflow_backend/pkg/utils"

	"github.com/google/uuid"
)

const temporaryPasswordLength = 8

// TokenIssuer signs access tokens for a principal id.
type TokenIssuer interface {
	GenerateToken(subject uuid.UUID, role string) (string, error)
}

// --- Data Transfer Objects (DTOs) ---

// RegisterRequest creates a business together with its admin.
type RegisterRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	BusinessName     string `json:"business_name" binding:"required"`
	BusinessCategory string `json:"business_category" binding:"required"`
}

// LoginRequest is the staff login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CustomerLoginRequest identifies the customer by email or phone.
// BusinessID disambiguates a phone or email registered with several businesses.
type CustomerLoginRequest struct {
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required"`
	BusinessID string `json:"business_id" binding:"omitempty,uuid"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PrincipalSummary is the public view of a logged-in principal.
type PrincipalSummary struct {
	ID         uuid.UUID            `json:"id"`
	Name       string               `json:"name"`
	Email      string               `json:"email,omitempty"`
	Phone      string               `json:"phone,omitempty"`
	Role       string               `json:"role"`
	Kind       models.PrincipalKind `json:"kind"`
	BusinessID uuid.UUID            `json:"business_id"`
}

type AuthResponse struct {
	User  PrincipalSummary `json:"user"`
	Token string           `json:"token"`
}

type ProfileResponse struct {
	User     PrincipalSummary `json:"user"`
	Business *models.Business `json:"business,omitempty"`
}

// --- AuthService Interface ---
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*AuthResponse, error)
	// ForgotPassword returns nil when no account matches so callers cannot
	// learn which addresses are registered.
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	GetProfile(ctx context.Context, principal models.Principal) (*ProfileResponse, error)
}

// --- authService Implementation ---
type authService struct {
	userRepo     repositories.UserRepository
	customerRepo repositories.CustomerRepository
	businessRepo repositories.BusinessRepository
	tx           repositories.Transactor
	db           repositories.SQLExecutor
	hasher       PasswordHasher
	tokens       TokenIssuer
	notifier     Notifier

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	userRepo repositories.UserRepository,
	customerRepo repositories.CustomerRepository,
	businessRepo repositories.BusinessRepository,
	tx repositories.Transactor,
	db repositories.SQLExecutor,
	hasher PasswordHasher,
	tokens TokenIssuer,
	notifier Notifier,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		businessRepo: businessRepo,
		tx:           tx,
		db:           db,
		hasher:       hasher,
		tokens:       tokens,
		notifier:     notifier,
	}
}

func (req *RegisterRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	req.BusinessCategory = strings.TrimSpace(req.BusinessCategory)
}

func (req RegisterRequest) validate() error {
	errs := fieldErrors{}
	if req.Name == "" {
		errs.add("name", "is required")
	}
	if req.Email == "" {
		errs.add("email", "is required")
	} else if !utils.IsValidEmail(req.Email) {
		errs.add("email", "must be a valid email address")
	}
	if !utils.IsValidPasswordLength(req.Password, MinPasswordLength) {
		errs.add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if req.BusinessName == "" {
		errs.add("business_name", "is required")
	}
	if req.BusinessCategory == "" {
		errs.add("business_category", "is required")
	}
	return errs.Err()
}

// Register creates the business and its admin in one transaction. The email
// check runs before any id is allocated or row written. Both ids are
// generated up front so each row can reference the other.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	businessID, userID := uuid.New(), uuid.New()
	business := &models.Business{
		ID:       businessID,
		Name:     req.BusinessName,
		Category: req.BusinessCategory,
		OwnerID:  userID,
	}
	user := &models.User{
		ID:           userID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		BusinessID:   businessID,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.businessRepo.CreateBusiness(ctx, exec, business); err != nil {
			return fmt.Errorf("failed to create business: %w", err)
		}
		if err := s.userRepo.CreateUser(ctx, exec, user); err != nil {
			if repositories.IsConstraint(err, repositories.UserEmailConstraint) {
				return ErrEmailExists
			}
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Business registered", map[string]interface{}{"business_id": businessID.String(), "owner_id": userID.String()})
	return s.respond(summaryForUser(user))
}

// Login authenticates staff. Unknown email and wrong password are the same error.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.verifyDummy(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.respond(summaryForUser(user))
}

// CustomerLogin tries each matching customer that has a password, oldest
// first, and accepts the first whose password verifies.
func (s *authService) CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*AuthResponse, error) {
	lookup := repositories.CustomerLookup{
		Email: utils.NormalizeEmail(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	}
	if lookup.Email == "" && lookup.Phone == "" {
		return nil, invalidField("email", "email or phone is required")
	}
	if req.Password == "" {
		return nil, invalidField("password", "is required")
	}
	if req.BusinessID != "" {
		businessID, err := utils.ParseUUID(req.BusinessID)
		if err != nil {
			return nil, invalidField("business_id", "must be a valid id")
		}
		lookup.BusinessID = &businessID
	}

	candidates, err := s.customerRepo.FindLoginCandidates(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	verified := 0
	for i := range candidates {
		c := &candidates[i]
		if !c.HasPortalAccess() {
			continue
		}
		verified++
		if s.hasher.Verify(req.Password, *c.PasswordHash) {
			return s.respond(summaryForCustomer(c))
		}
	}
	if verified == 0 {
		s.verifyDummy(req.Password)
	}
	return nil, ErrInvalidCredentials
}

// verifyDummy runs one password verification against a throwaway hash, so a
// login for an unknown account costs as much as a wrong password.
func (s *authService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			utils.LogError(err, "Failed to prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	s.hasher.Verify(password, s.dummyHash)
}

// ForgotPassword replaces the password of the first matching account (staff
// before customers) with a random one and sends it to the account email.
func (s *authService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) {
		return invalidField("email", "must be a valid email address")
	}

	temporary, err := utils.RandomAlphanumeric(temporaryPasswordLength)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(temporary)
	if err != nil {
		return err
	}

	var name string
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.userRepo.UpdatePasswordHash(ctx, s.db, user.ID, hash); err != nil {
			return fmt.Errorf("failed to reset user password: %w", err)
		}
		name = user.Name
	case errors.Is(err, repositories.ErrNotFound):
		customer, cerr := s.customerRepo.FindCustomerByEmail(ctx, email)
		if errors.Is(cerr, repositories.ErrNotFound) {
			utils.LogInfo("Password reset requested for unknown email")
			return nil
		}
		if cerr != nil {
			return fmt.Errorf("failed to find customer: %w", cerr)
		}
		if err := s.customerRepo.UpdatePasswordHash(ctx, s.db, customer.ID, hash); err != nil {
			return fmt.Errorf("failed to reset customer password: %w", err)
		}
		name = customer.Name
	default:
		return fmt.Errorf("failed to find user: %w", err)
	}

	body := fmt.Sprintf("Hello %s,\n\nYour password has been reset. Your temporary password is: %s\n\nPlease log in and change it.\n", name, temporary)
	if err := s.notifier.Send(ctx, email, "Your BizFlow password has been reset", body); err != nil {
		utils.LogError(err, "ForgotPassword: notification delivery failed")
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// GetProfile reloads the principal and its business.
func (s *authService) GetProfile(ctx context.Context, p models.Principal) (*ProfileResponse, error) {
	var summary PrincipalSummary
	switch p.Kind {
	case models.PrincipalCustomer:
		c, err := s.customerRepo.FindCustomerByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrPrincipalNotFound
			}
			return nil, fmt.Errorf("failed to load customer profile: %w", err)
		}
		summary = summaryForCustomer(c)
	default:
		u, err := s.userRepo.FindUserByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrPrincipalNotFound
			}
			return nil, fmt.Errorf("failed to load user profile: %w", err)
		}
		summary = summaryForUser(u)
	}

	business, err := s.businessRepo.GetBusinessByID(ctx, p.BusinessID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	return &ProfileResponse{User: summary, Business: business}, nil
}

func (s *authService) respond(summary PrincipalSummary) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(summary.ID, summary.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: summary, Token: token}, nil
}

func summaryForUser(u *models.User) PrincipalSummary {
	p := staffPrincipal(u)
	return PrincipalSummary{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role, Kind: p.Kind, BusinessID: p.BusinessID}
}

func summaryForCustomer(c *models.Customer) PrincipalSummary {
	p := customerPrincipal(c)
	return PrincipalSummary{ID: p.ID, Name: p.Name, Email: p.Email, Phone: c.Phone, Role: p.Role, Kind: p.Kind, BusinessID: p.BusinessID}
}
