package repositories_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"bizflow_backend/internal/database"
	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// openTestDB connects to TEST_DATABASE_URL and applies the schema. Tests are
// skipped when no database is configured.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.ApplySchema(context.Background(), db); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return db
}

// createTenant registers a business with its admin inside one transaction.
func createTenant(t *testing.T, db *sql.DB) (models.Business, models.User) {
	t.Helper()
	ctx := context.Background()
	business := models.Business{ID: uuid.New(), Name: "Test " + uuid.NewString()[:8], Category: "retail"}
	admin := models.User{
		ID:           uuid.New(),
		Name:         "Admin",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		BusinessID:   business.ID,
	}
	business.OwnerID = admin.ID

	err := repositories.NewTransactor(db).WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := repositories.NewBusinessRepository(db).CreateBusiness(ctx, exec, &business); err != nil {
			return err
		}
		return repositories.NewUserRepository(db).CreateUser(ctx, exec, &admin)
	})
	if err != nil {
		t.Fatalf("creating tenant: %v", err)
	}
	t.Cleanup(func() {
		// Cascades to every tenant-owned row; users go with the business.
		_, _ = db.Exec(`DELETE FROM businesses WHERE id = $1`, business.ID)
	})
	return business, admin
}

func TestCustomerPhoneIsUniquePerBusiness(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := repositories.NewCustomerRepository(db)
	bizA, _ := createTenant(t, db)
	bizB, _ := createTenant(t, db)

	c1 := &models.Customer{ID: uuid.New(), BusinessID: bizA.ID, Name: "c1", Phone: "555", Role: models.RoleCustomer}
	if err := repo.CreateCustomer(ctx, db, c1); err != nil {
		t.Fatalf("CreateCustomer(A): %v", err)
	}
	dup := &models.Customer{ID: uuid.New(), BusinessID: bizA.ID, Name: "dup", Phone: "555", Role: models.RoleCustomer}
	err := repo.CreateCustomer(ctx, db, dup)
	if !repositories.IsConstraint(err, repositories.CustomerPhoneConstraint) {
		t.Fatalf("duplicate phone in A: err = %v, want %s violation", err, repositories.CustomerPhoneConstraint)
	}
	c2 := &models.Customer{ID: uuid.New(), BusinessID: bizB.ID, Name: "c2", Phone: "555", Role: models.RoleCustomer}
	if err := repo.CreateCustomer(ctx, db, c2); err != nil {
		t.Fatalf("CreateCustomer(B): %v", err)
	}

	if _, err := repo.GetCustomerByID(ctx, db, bizA.ID, c2.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("A reading c2: err = %v, want ErrNotFound", err)
	}
	if got, err := repo.FindCustomerByID(ctx, c2.ID); err != nil || got.BusinessID != bizB.ID {
		t.Errorf("FindCustomerByID(c2) = %+v, %v", got, err)
	}
}

func TestUserEmailIsGloballyUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, admin := createTenant(t, db)
	biz, _ := createTenant(t, db)

	other := &models.User{ID: uuid.New(), Name: "Copy", Email: admin.Email, PasswordHash: "x", Role: models.RoleStaff, BusinessID: biz.ID}
	err := repositories.NewUserRepository(db).CreateUser(ctx, db, other)
	if !repositories.IsConstraint(err, repositories.UserEmailConstraint) {
		t.Errorf("err = %v, want %s violation", err, repositories.UserEmailConstraint)
	}
}

func TestStockUpdatesAreConditional(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := repositories.NewProductRepository(db)
	biz, _ := createTenant(t, db)

	p := &models.Product{ID: uuid.New(), BusinessID: biz.ID, Name: "Tea", Category: "drinks", Price: decimal.NewFromInt(2), StockQuantity: 3, Unit: "piece", IsAvailable: true}
	if err := repo.CreateProduct(ctx, db, p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if ok, err := repo.DecrementStock(ctx, db, biz.ID, p.ID, 5); err != nil || ok {
		t.Errorf("DecrementStock(5 of 3) = %v, %v; want false, nil", ok, err)
	}
	if ok, err := repo.DecrementStock(ctx, db, biz.ID, p.ID, 2); err != nil || !ok {
		t.Errorf("DecrementStock(2 of 3) = %v, %v; want true, nil", ok, err)
	}
	if qty, ok, err := repo.AdjustStock(ctx, db, biz.ID, p.ID, -2); err != nil || ok {
		t.Errorf("AdjustStock(-2 of 1) = %d, %v, %v; want refused", qty, ok, err)
	}
	if qty, ok, err := repo.AdjustStock(ctx, db, biz.ID, p.ID, 9); err != nil || !ok || qty != 10 {
		t.Errorf("AdjustStock(+9) = %d, %v, %v; want 10", qty, ok, err)
	}
}

func TestSaleRoundTripKeepsItemOrderAndTenant(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := repositories.NewSaleRepository(db)
	biz, admin := createTenant(t, db)
	other, _ := createTenant(t, db)

	items := []models.SaleItem{
		models.NewSaleItem(uuid.New(), "Coffee", 3, decimal.RequireFromString("0.10")),
		models.NewSaleItem(uuid.New(), "Cake", 1, decimal.RequireFromString("19.99")),
	}
	sale := &models.Sale{
		ID:           uuid.New(),
		BusinessID:   biz.ID,
		CustomerID:   uuid.New(),
		CustomerName: "Jo",
		Items:        items,
		TotalAmount:  models.SumSubtotals(items),
		AmountPaid:   decimal.NewFromInt(5),
		CreatedBy:    admin.ID,
	}
	sale.Recompute()
	if err := repo.CreateSale(ctx, db, sale); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	got, err := repo.GetSaleByID(ctx, biz.ID, sale.ID)
	if err != nil {
		t.Fatalf("GetSaleByID: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ProductName != "Coffee" || got.Items[1].ProductName != "Cake" {
		t.Errorf("items = %+v", got.Items)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("20.29")) || got.PaymentStatus != models.PaymentPartial {
		t.Errorf("total/status = %s/%s", got.TotalAmount, got.PaymentStatus)
	}

	if _, err := repo.GetSaleByID(ctx, other.ID, sale.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("other tenant: err = %v, want ErrNotFound", err)
	}
}
