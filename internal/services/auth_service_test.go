package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"
	"bizflow_backend/internal/services"

	"github.com/google/uuid"
)

func newAuthService(f *fixture) services.AuthService {
	return services.NewAuthService(f.users, f.customers, f.business, f.tx, nil, plainHasher{}, stubTokens{}, f.notifier)
}

func TestRegister_CreatesBusinessAndAdmin(t *testing.T) {
	f := newFixture()
	resp, err := newAuthService(f).Register(context.Background(), services.RegisterRequest{
		Name:             " Ada ",
		Email:            "Owner@Shop.COM ",
		Password:         "secret1",
		BusinessName:     "Ada's Shop",
		BusinessCategory: "retail",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Role != models.RoleAdmin || resp.User.Kind != models.PrincipalStaff {
		t.Errorf("user = %+v, want ADMIN staff", resp.User)
	}
	if resp.User.Email != "owner@shop.com" || resp.User.Name != "Ada" {
		t.Errorf("user not normalized: %+v", resp.User)
	}

	business, ok := f.store.businesses[resp.User.BusinessID]
	if !ok {
		t.Fatal("business was not stored")
	}
	if business.OwnerID != resp.User.ID {
		t.Errorf("owner_id = %s, want %s", business.OwnerID, resp.User.ID)
	}
}

func TestRegister_DuplicateEmailLeavesNoPartialState(t *testing.T) {
	f := newFixture()
	f.seedUser(f.seedBusiness("First"), models.RoleAdmin, "owner@shop.com", "secret1")

	_, err := newAuthService(f).Register(context.Background(), services.RegisterRequest{
		Name: "Other", Email: "OWNER@shop.com", Password: "secret1", BusinessName: "Second", BusinessCategory: "retail",
	})
	if !errors.Is(err, services.ErrEmailExists) || !errors.Is(err, services.ErrConflict) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	if len(f.store.businesses) != 1 || len(f.store.users) != 1 {
		t.Errorf("businesses=%d users=%d, want 1/1", len(f.store.businesses), len(f.store.users))
	}
}

func TestRegister_ConstraintViolationRollsBackBusiness(t *testing.T) {
	f := newFixture()
	f.store.failCreateUser = duplicate(repositories.UserEmailConstraint)

	_, err := newAuthService(f).Register(context.Background(), services.RegisterRequest{
		Name: "Ada", Email: "owner@shop.com", Password: "secret1", BusinessName: "Shop", BusinessCategory: "retail",
	})
	if !errors.Is(err, services.ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	if len(f.store.businesses) != 0 {
		t.Errorf("business row survived the rollback")
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture()
	_, err := newAuthService(f).Register(context.Background(), services.RegisterRequest{
		Name: "Ada", Email: "not-an-email", Password: "123", BusinessName: "", BusinessCategory: "retail",
	})
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, field := range []string{"email", "password", "business_name"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing field error for %s in %v", field, verr.Fields)
		}
	}
	if f.tx.calls != 0 {
		t.Error("validation failure must not open a transaction")
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture()
	f.seedUser(f.seedBusiness("Shop"), models.RoleAdmin, "owner@shop.com", "secret1")
	svc := newAuthService(f)

	_, unknown := svc.Login(context.Background(), services.LoginRequest{Email: "nobody@shop.com", Password: "secret1"})
	_, wrong := svc.Login(context.Background(), services.LoginRequest{Email: "owner@shop.com", Password: "wrong!"})
	if !errors.Is(unknown, services.ErrInvalidCredentials) || !errors.Is(wrong, services.ErrInvalidCredentials) {
		t.Fatalf("unknown=%v wrong=%v, want ErrInvalidCredentials", unknown, wrong)
	}
	if unknown.Error() != wrong.Error() {
		t.Errorf("messages differ: %q vs %q", unknown, wrong)
	}

	resp, err := svc.Login(context.Background(), services.LoginRequest{Email: " Owner@Shop.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.Role != models.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", resp.User.Role)
	}
}

// countingHasher records how many password verifications a call performs.
type countingHasher struct {
	plainHasher
	verifies int
}

func (h *countingHasher) Verify(plaintext, digest string) bool {
	h.verifies++
	return h.plainHasher.Verify(plaintext, digest)
}

func TestLogin_UnknownAccountsCostOneVerification(t *testing.T) {
	f := newFixture()
	biz := f.seedBusiness("Shop")
	f.seedUser(biz, models.RoleAdmin, "owner@shop.com", "secret1")
	f.seedCustomer(biz, "Jo", "555", "jo@shop.com", "portal1")
	hasher := &countingHasher{}
	svc := services.NewAuthService(f.users, f.customers, f.business, f.tx, nil, hasher, stubTokens{}, f.notifier)
	ctx := context.Background()

	tests := []struct {
		name  string
		login func() error
	}{
		{"unknown staff email", func() error {
			_, err := svc.Login(ctx, services.LoginRequest{Email: "nobody@shop.com", Password: "secret1"})
			return err
		}},
		{"wrong staff password", func() error {
			_, err := svc.Login(ctx, services.LoginRequest{Email: "owner@shop.com", Password: "wrong!"})
			return err
		}},
		{"unknown customer", func() error {
			_, err := svc.CustomerLogin(ctx, services.CustomerLoginRequest{Phone: "999", Password: "portal1"})
			return err
		}},
		{"wrong customer password", func() error {
			_, err := svc.CustomerLogin(ctx, services.CustomerLoginRequest{Phone: "555", Password: "wrong!"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher.verifies = 0
			if err := tt.login(); !errors.Is(err, services.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
			if hasher.verifies != 1 {
				t.Errorf("verifications = %d, want 1", hasher.verifies)
			}
		})
	}
}

func TestLogin_NormalizesStoredRole(t *testing.T) {
	f := newFixture()
	f.seedUser(f.seedBusiness("Shop"), "staff", "clerk@shop.com", "secret1")

	resp, err := newAuthService(f).Login(context.Background(), services.LoginRequest{Email: "clerk@shop.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.Role != models.RoleStaff {
		t.Errorf("role = %q, want STAFF", resp.User.Role)
	}
}

func TestCustomerLogin_FirstVerifyingCandidateWins(t *testing.T) {
	f := newFixture()
	bizA, bizB := f.seedBusiness("A"), f.seedBusiness("B")
	f.seedCustomer(bizA, "No Portal", "555", "", "")
	first := f.seedCustomer(bizA, "First", "555-0100", "", "alpha1")
	second := f.seedCustomer(bizB, "Second", "555-0100", "", "beta22")
	svc := newAuthService(f)

	resp, err := svc.CustomerLogin(context.Background(), services.CustomerLoginRequest{Phone: "555-0100", Password: "beta22"})
	if err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}
	if resp.User.ID != second.ID || resp.User.Kind != models.PrincipalCustomer {
		t.Errorf("logged in as %+v, want second customer", resp.User)
	}

	resp, err = svc.CustomerLogin(context.Background(), services.CustomerLoginRequest{Phone: "555-0100", Password: "alpha1"})
	if err != nil {
		t.Fatalf("CustomerLogin: %v", err)
	}
	if resp.User.ID != first.ID || resp.User.Role != models.RoleCustomer {
		t.Errorf("logged in as %+v, want first customer", resp.User)
	}

	_, err = svc.CustomerLogin(context.Background(), services.CustomerLoginRequest{
		Phone: "555-0100", Password: "alpha1", BusinessID: bizB.String(),
	})
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("scoped to B with A's password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCustomerLogin_RequiresIdentifier(t *testing.T) {
	f := newFixture()
	_, err := newAuthService(f).CustomerLogin(context.Background(), services.CustomerLoginRequest{Password: "alpha1"})
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	f := newFixture()
	if err := newAuthService(f).ForgotPassword(context.Background(), services.ForgotPasswordRequest{Email: "ghost@nowhere.io"}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("sent %d messages, want none", len(f.notifier.sent))
	}
}

// temporaryPassword pulls the generated password out of the reset email.
func temporaryPassword(t *testing.T, body string) string {
	t.Helper()
	const marker = "temporary password is: "
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("no temporary password in %q", body)
	}
	rest := body[i+len(marker):]
	return strings.Fields(rest)[0]
}

func TestForgotPassword_ResetsStaffFirst(t *testing.T) {
	f := newFixture()
	biz := f.seedBusiness("Shop")
	user := f.seedUser(biz, models.RoleAdmin, "shared@shop.com", "secret1")
	customer := f.seedCustomer(biz, "Cust", "555", "shared@shop.com", "custpw")
	svc := newAuthService(f)

	if err := svc.ForgotPassword(context.Background(), services.ForgotPasswordRequest{Email: "Shared@Shop.com"}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].to != "shared@shop.com" {
		t.Fatalf("sent = %+v, want one message to shared@shop.com", f.notifier.sent)
	}
	temp := temporaryPassword(t, f.notifier.sent[0].body)
	if len(temp) != 8 {
		t.Errorf("temporary password %q has length %d, want 8", temp, len(temp))
	}

	if _, err := svc.Login(context.Background(), services.LoginRequest{Email: user.Email, Password: temp}); err != nil {
		t.Errorf("login with temporary password: %v", err)
	}
	if _, err := svc.Login(context.Background(), services.LoginRequest{Email: user.Email, Password: "secret1"}); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("old password still works: err = %v", err)
	}
	if got := *f.store.customers[customer.ID].PasswordHash; got != "hashed:custpw" {
		t.Errorf("customer hash changed to %q", got)
	}
}

func TestForgotPassword_FallsBackToCustomer(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer(f.seedBusiness("Shop"), "Cust", "555", "cust@mail.com", "")

	if err := newAuthService(f).ForgotPassword(context.Background(), services.ForgotPasswordRequest{Email: "cust@mail.com"}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	stored := f.store.customers[customer.ID]
	if !stored.HasPortalAccess() {
		t.Fatal("customer should have portal access after reset")
	}
	temp := temporaryPassword(t, f.notifier.sent[0].body)
	if *stored.PasswordHash != "hashed:"+temp {
		t.Errorf("stored hash does not match the mailed password")
	}
}

func TestForgotPassword_NotifierFailureKeepsReset(t *testing.T) {
	f := newFixture()
	user := f.seedUser(f.seedBusiness("Shop"), models.RoleStaff, "clerk@shop.com", "secret1")
	f.notifier.err = errors.New("smtp down")

	err := newAuthService(f).ForgotPassword(context.Background(), services.ForgotPasswordRequest{Email: "clerk@shop.com"})
	if !errors.Is(err, services.ErrNotificationFailed) {
		t.Fatalf("err = %v, want ErrNotificationFailed", err)
	}
	if f.store.users[user.ID].PasswordHash == "hashed:secret1" {
		t.Error("password should have been replaced even though delivery failed")
	}
}

func TestGetProfile(t *testing.T) {
	f := newFixture()
	biz := f.seedBusiness("Shop")
	user := f.seedUser(biz, models.RoleAdmin, "owner@shop.com", "secret1")
	customer := f.seedCustomer(biz, "Cust", "555", "", "custpw")
	svc := newAuthService(f)

	profile, err := svc.GetProfile(context.Background(), principalFor(user))
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.User.ID != user.ID || profile.Business == nil || profile.Business.ID != biz {
		t.Errorf("profile = %+v", profile)
	}

	profile, err = svc.GetProfile(context.Background(), customerPrincipalFor(customer))
	if err != nil {
		t.Fatalf("GetProfile(customer): %v", err)
	}
	if profile.User.Phone != "555" || profile.User.Kind != models.PrincipalCustomer {
		t.Errorf("customer profile = %+v", profile.User)
	}

	_, err = svc.GetProfile(context.Background(), models.Principal{ID: uuid.New(), BusinessID: biz, Role: models.RoleStaff, Kind: models.PrincipalStaff})
	if !errors.Is(err, services.ErrPrincipalNotFound) {
		t.Errorf("deleted principal: err = %v, want ErrPrincipalNotFound", err)
	}
}

func TestPrincipalResolver(t *testing.T) {
	f := newFixture()
	biz := f.seedBusiness("Shop")
	user := f.seedUser(biz, " admin ", "owner@shop.com", "secret1")
	customer := f.seedCustomer(biz, "Cust", "555", "", "custpw")
	resolver := services.NewPrincipalResolver(f.users, f.customers)

	p, err := resolver.ResolvePrincipal(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ResolvePrincipal(user): %v", err)
	}
	if p.Role != models.RoleAdmin || p.Kind != models.PrincipalStaff {
		t.Errorf("user principal = %+v", p)
	}

	p, err = resolver.ResolvePrincipal(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("ResolvePrincipal(customer): %v", err)
	}
	if p.Role != models.RoleCustomer || p.Kind != models.PrincipalCustomer || p.BusinessID != biz {
		t.Errorf("customer principal = %+v", p)
	}

	if _, err := resolver.ResolvePrincipal(context.Background(), uuid.New()); !errors.Is(err, services.ErrPrincipalNotFound) {
		t.Errorf("unknown id: err = %v, want ErrPrincipalNotFound", err)
	}
}
