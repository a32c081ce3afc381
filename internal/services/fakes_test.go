package services_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the database shared by the fake
// repositories. memTx snapshots it and restores the snapshot on error.
type memStore struct {
	mu         sync.Mutex
	businesses map[uuid.UUID]models.Business
	users      map[uuid.UUID]models.User
	customers  map[uuid.UUID]models.Customer
	products   map[uuid.UUID]models.Product
	sales      map[uuid.UUID]models.Sale
	movements  []models.StockMovement
	order      map[uuid.UUID]int
	seq        int

	failCreateUser error
}

func newMemStore() *memStore {
	return &memStore{
		businesses: map[uuid.UUID]models.Business{},
		users:      map[uuid.UUID]models.User{},
		customers:  map[uuid.UUID]models.Customer{},
		products:   map[uuid.UUID]models.Product{},
		sales:      map[uuid.UUID]models.Sale{},
		order:      map[uuid.UUID]int{},
	}
}

func (s *memStore) stamp(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

type snapshot struct {
	businesses map[uuid.UUID]models.Business
	users      map[uuid.UUID]models.User
	customers  map[uuid.UUID]models.Customer
	products   map[uuid.UUID]models.Product
	sales      map[uuid.UUID]models.Sale
	movements  []models.StockMovement
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		businesses: copyMap(s.businesses),
		users:      copyMap(s.users),
		customers:  copyMap(s.customers),
		products:   copyMap(s.products),
		sales:      copyMap(s.sales),
		movements:  append([]models.StockMovement(nil), s.movements...),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses, s.users, s.customers = snap.businesses, snap.users, snap.customers
	s.products, s.sales, s.movements = snap.products, snap.sales, snap.movements
}

var (
	_ repositories.Transactor              = (*memTx)(nil)
	_ repositories.UserRepository          = (*memUserRepo)(nil)
	_ repositories.EmployeeRepository      = (*memEmployeeRepo)(nil)
	_ repositories.BusinessRepository      = (*memBusinessRepo)(nil)
	_ repositories.CustomerRepository      = (*memCustomerRepo)(nil)
	_ repositories.ProductRepository       = (*memProductRepo)(nil)
	_ repositories.StockMovementRepository = (*memMovementRepo)(nil)
	_ repositories.SaleRepository          = (*memSaleRepo)(nil)
)

func duplicate(constraint string) error {
	return fmt.Errorf("%w: duplicate (constraint: %s)", repositories.ErrDuplicateKey, constraint)
}

// --- Transactor ---

type memTx struct {
	store *memStore
	calls int
}

func (t *memTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// --- Users ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) CreateUser(_ context.Context, _ repositories.SQLExecutor, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failCreateUser != nil {
		return r.s.failCreateUser
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return duplicate(repositories.UserEmailConstraint)
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.s.users[u.ID] = *u
	r.s.stamp(u.ID)
	return nil
}

func (r *memUserRepo) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

// --- Employees ---

type memEmployeeRepo struct{ s *memStore }

func isStaff(u models.User) bool { return strings.EqualFold(strings.TrimSpace(u.Role), models.RoleStaff) }

func (r *memEmployeeRepo) GetEmployees(_ context.Context, businessID uuid.UUID) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		if u.BusinessID == businessID && isStaff(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memEmployeeRepo) GetEmployeeByID(_ context.Context, businessID, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.BusinessID != businessID || !isStaff(u) {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *memEmployeeRepo) UpdateEmployee(_ context.Context, _ repositories.SQLExecutor, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[u.ID]
	if !ok || existing.BusinessID != u.BusinessID || !isStaff(existing) {
		return repositories.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *memEmployeeRepo) DeleteEmployee(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.BusinessID != businessID || !isStaff(u) {
		return repositories.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// --- Businesses ---

type memBusinessRepo struct{ s *memStore }

func (r *memBusinessRepo) CreateBusiness(_ context.Context, _ repositories.SQLExecutor, b *models.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.businesses[b.ID] = *b
	return nil
}

func (r *memBusinessRepo) GetBusinessByID(_ context.Context, id uuid.UUID) (*models.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &b, nil
}

func (r *memBusinessRepo) UpdateBusiness(_ context.Context, _ repositories.SQLExecutor, b *models.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.businesses[b.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.businesses[b.ID] = *b
	return nil
}

// --- Customers ---

type memCustomerRepo struct{ s *memStore }

func (r *memCustomerRepo) CreateCustomer(_ context.Context, _ repositories.SQLExecutor, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.customers {
		if existing.BusinessID == c.BusinessID && existing.Phone == c.Phone {
			return duplicate(repositories.CustomerPhoneConstraint)
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.customers[c.ID] = *c
	r.s.stamp(c.ID)
	return nil
}

func (r *memCustomerRepo) FindCustomerByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *memCustomerRepo) GetCustomerByID(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.BusinessID != businessID {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *memCustomerRepo) GetCustomerByPhone(_ context.Context, businessID uuid.UUID, phone string) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.BusinessID == businessID && c.Phone == phone {
			c := c
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// sorted returns the customers matching keep, oldest first.
func (r *memCustomerRepo) sorted(keep func(models.Customer) bool) []models.Customer {
	out := []models.Customer{}
	for _, c := range r.s.customers {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.order[out[i].ID] < r.s.order[out[j].ID] })
	return out
}

func (r *memCustomerRepo) FindLoginCandidates(_ context.Context, lookup repositories.CustomerLookup) ([]models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(c models.Customer) bool {
		if !c.HasPortalAccess() {
			return false
		}
		if lookup.BusinessID != nil && c.BusinessID != *lookup.BusinessID {
			return false
		}
		if lookup.Email != "" {
			return c.Email != nil && strings.EqualFold(*c.Email, lookup.Email)
		}
		return c.Phone == lookup.Phone
	}), nil
}

func (r *memCustomerRepo) FindCustomerByEmail(_ context.Context, email string) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matches := r.sorted(func(c models.Customer) bool {
		return c.Email != nil && strings.EqualFold(*c.Email, email)
	})
	if len(matches) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &matches[0], nil
}

func (r *memCustomerRepo) GetCustomers(_ context.Context, f models.CustomerFilters) ([]models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(c models.Customer) bool {
		return c.BusinessID == f.BusinessID && (f.Search == "" || strings.Contains(c.Name, f.Search) || strings.Contains(c.Phone, f.Search))
	}), nil
}

func (r *memCustomerRepo) UpdateCustomer(_ context.Context, _ repositories.SQLExecutor, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.customers[c.ID]
	if !ok || existing.BusinessID != c.BusinessID {
		return repositories.ErrNotFound
	}
	for _, other := range r.s.customers {
		if other.ID != c.ID && other.BusinessID == c.BusinessID && other.Phone == c.Phone {
			return duplicate(repositories.CustomerPhoneConstraint)
		}
	}
	r.s.customers[c.ID] = *c
	return nil
}

func (r *memCustomerRepo) UpdatePasswordHash(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.PasswordHash = &hash
	r.s.customers[id] = c
	return nil
}

func (r *memCustomerRepo) DeleteCustomer(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.BusinessID != businessID {
		return repositories.ErrNotFound
	}
	delete(r.s.customers, id)
	return nil
}

// --- Products and stock movements ---

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) CreateProduct(_ context.Context, _ repositories.SQLExecutor, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) GetProductByID(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.BusinessID != businessID {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *memProductRepo) GetProducts(_ context.Context, f models.ProductFilters) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Product{}
	for _, p := range r.s.products {
		if p.BusinessID == f.BusinessID && (!f.AvailableOnly || p.IsAvailable) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) UpdateProduct(_ context.Context, _ repositories.SQLExecutor, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.products[p.ID]
	if !ok || existing.BusinessID != p.BusinessID {
		return repositories.ErrNotFound
	}
	p.StockQuantity = existing.StockQuantity
	r.s.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) DeleteProduct(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.BusinessID != businessID {
		return repositories.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID, quantity int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.BusinessID != businessID || p.StockQuantity < quantity {
		return false, nil
	}
	p.StockQuantity -= quantity
	r.s.products[id] = p
	return true, nil
}

func (r *memProductRepo) AdjustStock(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID, delta int) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.BusinessID != businessID || p.StockQuantity+delta < 0 {
		return 0, false, nil
	}
	p.StockQuantity += delta
	r.s.products[id] = p
	return p.StockQuantity, true, nil
}

func (r *memProductRepo) SetStock(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID, quantity int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.BusinessID != businessID {
		return 0, repositories.ErrNotFound
	}
	previous := p.StockQuantity
	p.StockQuantity = quantity
	r.s.products[id] = p
	return previous, nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) CreateMovement(_ context.Context, _ repositories.SQLExecutor, m *models.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *memMovementRepo) GetMovementsByProduct(_ context.Context, businessID, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.StockMovement{}
	for _, m := range r.s.movements {
		if m.BusinessID == businessID && m.ProductID == productID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- Sales ---

type memSaleRepo struct{ s *memStore }

func (r *memSaleRepo) CreateSale(_ context.Context, _ repositories.SQLExecutor, sale *models.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	stored := *sale
	stored.Items = append([]models.SaleItem(nil), sale.Items...)
	r.s.sales[sale.ID] = stored
	r.s.stamp(sale.ID)
	return nil
}

func (r *memSaleRepo) get(businessID, id uuid.UUID) (*models.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok || sale.BusinessID != businessID {
		return nil, repositories.ErrNotFound
	}
	sale.Recompute()
	return &sale, nil
}

func (r *memSaleRepo) GetSaleByID(_ context.Context, businessID, id uuid.UUID) (*models.Sale, error) {
	return r.get(businessID, id)
}

func (r *memSaleRepo) GetSaleForUpdate(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID) (*models.Sale, error) {
	return r.get(businessID, id)
}

func (r *memSaleRepo) GetSales(_ context.Context, f models.SaleFilters) ([]models.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Sale{}
	for _, sale := range r.s.sales {
		switch {
		case sale.BusinessID != f.BusinessID:
		case f.CustomerID != nil && sale.CustomerID != *f.CustomerID:
		case f.CreatedBy != nil && sale.CreatedBy != *f.CreatedBy:
		case f.PaymentStatus != nil && sale.PaymentStatus != *f.PaymentStatus:
		default:
			out = append(out, sale)
		}
	}
	return out, nil
}

func (r *memSaleRepo) UpdateSalePayment(_ context.Context, _ repositories.SQLExecutor, sale *models.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.sales[sale.ID]
	if !ok || stored.BusinessID != sale.BusinessID {
		return repositories.ErrNotFound
	}
	stored.AmountPaid = sale.AmountPaid
	stored.BalanceAmount = sale.BalanceAmount
	stored.PaymentStatus = sale.PaymentStatus
	stored.PaymentMethod = sale.PaymentMethod
	stored.Notes = sale.Notes
	r.s.sales[sale.ID] = stored
	return nil
}

func (r *memSaleRepo) DeleteSale(_ context.Context, _ repositories.SQLExecutor, businessID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok || sale.BusinessID != businessID {
		return repositories.ErrNotFound
	}
	delete(r.s.sales, id)
	return nil
}

// --- Credentials, tokens, notifications ---

type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Verify(plaintext, digest string) bool  { return digest == "hashed:"+plaintext }

type stubTokens struct{}

func (stubTokens) GenerateToken(subject uuid.UUID, role string) (string, error) {
	return "token-" + role + "-" + subject.String(), nil
}

type sentMessage struct {
	to, subject, body string
}

type recordingNotifier struct {
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{to: to, subject: subject, body: body})
	return nil
}

// fixture bundles a store with every fake repository over it.
type fixture struct {
	store     *memStore
	tx        *memTx
	users     *memUserRepo
	employees *memEmployeeRepo
	business  *memBusinessRepo
	customers *memCustomerRepo
	products  *memProductRepo
	movements *memMovementRepo
	sales     *memSaleRepo
	notifier  *recordingNotifier
}

func newFixture() *fixture {
	s := newMemStore()
	return &fixture{
		store:     s,
		tx:        &memTx{store: s},
		users:     &memUserRepo{s: s},
		employees: &memEmployeeRepo{s: s},
		business:  &memBusinessRepo{s: s},
		customers: &memCustomerRepo{s: s},
		products:  &memProductRepo{s: s},
		movements: &memMovementRepo{s: s},
		sales:     &memSaleRepo{s: s},
		notifier:  &recordingNotifier{},
	}
}

func (f *fixture) seedBusiness(name string) uuid.UUID {
	id := uuid.New()
	f.store.businesses[id] = models.Business{ID: id, Name: name, Category: "retail"}
	return id
}

func (f *fixture) seedUser(businessID uuid.UUID, role, email, password string) models.User {
	u := models.User{
		ID:           uuid.New(),
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "hashed:" + password,
		Role:         role,
		BusinessID:   businessID,
	}
	f.store.users[u.ID] = u
	f.store.stamp(u.ID)
	return u
}

// seedCustomer stores a customer; an empty password means no portal access.
func (f *fixture) seedCustomer(businessID uuid.UUID, name, phone, email, password string) models.Customer {
	c := models.Customer{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       name,
		Phone:      phone,
		Role:       models.RoleCustomer,
	}
	if email != "" {
		c.Email = &email
	}
	if password != "" {
		hash := "hashed:" + password
		c.PasswordHash = &hash
	}
	f.store.customers[c.ID] = c
	f.store.stamp(c.ID)
	return c
}

func (f *fixture) seedProduct(businessID uuid.UUID, name string, price string, stock int) models.Product {
	p := models.Product{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Name:          name,
		Category:      "general",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Unit:          models.DefaultProductUnit,
		IsAvailable:   true,
	}
	f.store.products[p.ID] = p
	return p
}

func principalFor(u models.User) models.Principal {
	return models.Principal{ID: u.ID, BusinessID: u.BusinessID, Role: u.Role, Kind: models.PrincipalStaff, Name: u.Name, Email: u.Email}
}

func customerPrincipalFor(c models.Customer) models.Principal {
	return models.Principal{ID: c.ID, BusinessID: c.BusinessID, Role: models.RoleCustomer, Kind: models.PrincipalCustomer, Name: c.Name}
}
