package services_test

import (
	"context"
	"errors"
	"testing"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/services"
)

func strPtr(s string) *string { return &s }

func TestCreateCustomer_PhoneUniquePerBusiness(t *testing.T) {
	f := newFixture()
	bizA, bizB := f.seedBusiness("A"), f.seedBusiness("B")
	adminA := principalFor(f.seedUser(bizA, models.RoleAdmin, "a@shop.com", "secret1"))
	adminB := principalFor(f.seedUser(bizB, models.RoleAdmin, "b@shop.com", "secret1"))
	svc := services.NewCustomerService(f.customers, nil, plainHasher{})

	created, err := svc.CreateCustomer(context.Background(), adminA, services.CreateCustomerRequest{Name: "Jo", Phone: " 555 "})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if created.Phone != "555" || created.BusinessID != bizA || created.Role != models.RoleCustomer {
		t.Errorf("created = %+v", created)
	}
	if created.HasPortalAccess() {
		t.Error("customer without password should have no portal access")
	}

	_, err = svc.CreateCustomer(context.Background(), adminA, services.CreateCustomerRequest{Name: "Other Jo", Phone: "555"})
	if !errors.Is(err, services.ErrPhoneExists) || !errors.Is(err, services.ErrConflict) {
		t.Errorf("same phone in A: err = %v, want ErrPhoneExists", err)
	}

	inB, err := svc.CreateCustomer(context.Background(), adminB, services.CreateCustomerRequest{Name: "Jo in B", Phone: "555"})
	if err != nil {
		t.Fatalf("same phone in B: %v", err)
	}

	if _, err := svc.GetCustomerByID(context.Background(), adminA, inB.ID); !errors.Is(err, services.ErrCustomerNotFound) {
		t.Errorf("cross-tenant read: err = %v, want ErrCustomerNotFound", err)
	}
	list, err := svc.GetCustomers(context.Background(), adminA, "")
	if err != nil {
		t.Fatalf("GetCustomers: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("A sees %d customers, want only its own", len(list))
	}
}

func TestCreateCustomer_WithPasswordGrantsPortalAccess(t *testing.T) {
	f := newFixture()
	biz := f.seedBusiness("Shop")
	staff := principalFor(f.seedUser(biz, models.RoleStaff, "clerk@shop.com", "secret1"))
	svc := services.NewCustomerService(f.customers, nil, plainHasher{})

	c, err := svc.CreateCustomer(context.Background(), staff, services.CreateCustomerRequest{
		Name: "Jo", Phone: "555", Email: strPtr(" Jo@Mail.com "), Password: strPtr("portal1"),
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if !c.HasPortalAccess() || *c.PasswordHash != "hashed:portal1" {
		t.Errorf("password hash = %v", c.PasswordHash)
	}
	if c.Email == nil || *c.Email != "jo@mail.com" {
		t.Errorf("email = %v, want jo@mail.com", c.Email)
	}

	_, err = svc.CreateCustomer(context.Background(), staff, services.CreateCustomerRequest{Name: "Short", Phone: "556", Password: strPtr("123")})
	var verr *services.ValidationError
	if !errors.As(err, &verr) || verr.Fields["password"] == "" {
		t.Errorf("short password: err = %v, want password field error", err)
	}
}

func TestUpdateCustomer(t *testing.T) {
	f := newFixture()
	biz := f.seedBusiness("Shop")
	admin := principalFor(f.seedUser(biz, models.RoleAdmin, "owner@shop.com", "secret1"))
	jo := f.seedCustomer(biz, "Jo", "555", "", "portal1")
	f.seedCustomer(biz, "Al", "777", "", "")
	svc := services.NewCustomerService(f.customers, nil, plainHasher{})

	updated, err := svc.UpdateCustomer(context.Background(), admin, jo.ID, services.UpdateCustomerRequest{Name: strPtr("Joanna")})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.Name != "Joanna" || updated.Phone != "555" || *updated.PasswordHash != "hashed:portal1" {
		t.Errorf("updated = %+v", updated)
	}

	_, err = svc.UpdateCustomer(context.Background(), admin, jo.ID, services.UpdateCustomerRequest{Phone: strPtr("777")})
	if !errors.Is(err, services.ErrPhoneExists) {
		t.Errorf("phone taken: err = %v, want ErrPhoneExists", err)
	}

	updated, err = svc.UpdateCustomer(context.Background(), admin, jo.ID, services.UpdateCustomerRequest{Password: strPtr("newpass")})
	if err != nil {
		t.Fatalf("UpdateCustomer(password): %v", err)
	}
	if *updated.PasswordHash != "hashed:newpass" {
		t.Errorf("hash = %s, want hashed:newpass", *updated.PasswordHash)
	}
}

func TestDeleteCustomer_OtherTenantIsNotFound(t *testing.T) {
	f := newFixture()
	bizA, bizB := f.seedBusiness("A"), f.seedBusiness("B")
	adminA := principalFor(f.seedUser(bizA, models.RoleAdmin, "a@shop.com", "secret1"))
	inB := f.seedCustomer(bizB, "Jo", "555", "", "")
	svc := services.NewCustomerService(f.customers, nil, plainHasher{})

	if err := svc.DeleteCustomer(context.Background(), adminA, inB.ID); !errors.Is(err, services.ErrCustomerNotFound) {
		t.Fatalf("err = %v, want ErrCustomerNotFound", err)
	}
	if _, ok := f.store.customers[inB.ID]; !ok {
		t.Error("B's customer was deleted by A")
	}
}
