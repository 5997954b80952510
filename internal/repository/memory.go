package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/models"
)

// MemoryStore is a mutex-guarded in-memory implementation of every
// repository interface. It backs tests and local development without a
// running mongod.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]*models.User
	products      map[primitive.ObjectID]*models.Product
	carts         map[primitive.ObjectID]*models.Cart
	orders        map[primitive.ObjectID]*models.Order
	payments      map[primitive.ObjectID]*models.Payment
	prescriptions map[primitive.ObjectID]*models.Prescription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[primitive.ObjectID]*models.User),
		products:      make(map[primitive.ObjectID]*models.Product),
		carts:         make(map[primitive.ObjectID]*models.Cart),
		orders:        make(map[primitive.ObjectID]*models.Order),
		payments:      make(map[primitive.ObjectID]*models.Payment),
		prescriptions: make(map[primitive.ObjectID]*models.Prescription),
	}
}

// --- users ---

type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers {
	return &MemoryUsers{store: store}
}

func (r *MemoryUsers) Create(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *MemoryUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, user := range r.store.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// --- products ---

type MemoryProducts struct{ store *MemoryStore }

func NewMemoryProducts(store *MemoryStore) *MemoryProducts {
	return &MemoryProducts{store: store}
}

func (r *MemoryProducts) Create(ctx context.Context, product *models.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	clone := *product
	r.store.products[product.ID] = &clone
	return nil
}

func (r *MemoryProducts) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	product, ok := r.store.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *MemoryProducts) Update(ctx context.Context, product *models.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[product.ID]; !ok {
		return apperrors.ErrNotFound
	}
	product.UpdatedAt = time.Now()
	clone := *product
	r.store.products[product.ID] = &clone
	return nil
}

func (r *MemoryProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.products, id)
	return nil
}

func (r *MemoryProducts) List(ctx context.Context, filter ProductFilter) ([]*models.Product, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*models.Product
	now := time.Now()
	for _, p := range r.store.products {
		if !productMatches(p, filter, now) {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}

	sortProducts(matched, filter.SortBy)

	total := int64(len(matched))
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func productMatches(p *models.Product, filter ProductFilter, now time.Time) bool {
	if len(filter.Categories) > 0 {
		found := false
		for _, c := range filter.Categories {
			if p.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Manufacturer != "" && p.Manufacturer != filter.Manufacturer {
		return false
	}
	if filter.RequiresPrescription != nil && p.RequiresPrescription != *filter.RequiresPrescription {
		return false
	}
	if filter.MinPrice != nil && p.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
		return false
	}
	if !filter.ShowExpired && p.Expired(now) {
		return false
	}
	if filter.ExpiryBefore != nil && p.ExpiryDate.After(*filter.ExpiryBefore) {
		return false
	}
	if filter.ExpiryAfter != nil && p.ExpiryDate.Before(*filter.ExpiryAfter) {
		return false
	}
	return true
}

func sortProducts(products []*models.Product, sortBy string) {
	sort.SliceStable(products, func(i, j int) bool {
		switch sortBy {
		case "price_asc":
			return products[i].Price < products[j].Price
		case "price_desc":
			return products[i].Price > products[j].Price
		case "name_asc":
			return products[i].Name < products[j].Name
		case "name_desc":
			return products[i].Name > products[j].Name
		default:
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
	})
}

func (r *MemoryProducts) Search(ctx context.Context, query string) ([]*models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	q := strings.ToLower(query)
	var matched []*models.Product
	for _, p := range r.store.products {
		haystack := strings.ToLower(strings.Join(append([]string{
			p.Name, p.Description, p.Manufacturer, string(p.Category),
		}, p.ActiveIngredients...), " "))
		if strings.Contains(haystack, q) {
			clone := *p
			matched = append(matched, &clone)
		}
	}
	return matched, nil
}

func (r *MemoryProducts) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	product, ok := r.store.products[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	product.StockQuantity += delta
	product.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryProducts) NearlyExpired(ctx context.Context, threshold time.Time) ([]*models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	now := time.Now()
	var matched []*models.Product
	for _, p := range r.store.products {
		if p.ExpiryDate.After(now) && !p.ExpiryDate.After(threshold) {
			clone := *p
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ExpiryDate.Before(matched[j].ExpiryDate)
	})
	return matched, nil
}

func (r *MemoryProducts) RemoveExpired(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	var removed int64
	for id, p := range r.store.products {
		if p.ExpiryDate.Before(now) {
			delete(r.store.products, id)
			removed++
		}
	}
	return removed, nil
}

// --- carts ---

type MemoryCarts struct{ store *MemoryStore }

func NewMemoryCarts(store *MemoryStore) *MemoryCarts {
	return &MemoryCarts{store: store}
}

func (r *MemoryCarts) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, cart := range r.store.carts {
		if cart.UserID == userID {
			clone := *cart
			clone.Items = append([]models.CartItem(nil), cart.Items...)
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *MemoryCarts) Save(ctx context.Context, cart *models.Cart) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, existing := range r.store.carts {
		if existing.UserID == cart.UserID {
			cart.ID = id
			break
		}
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
		cart.CreatedAt = time.Now()
	}
	cart.UpdatedAt = time.Now()

	clone := *cart
	clone.Items = append([]models.CartItem(nil), cart.Items...)
	r.store.carts[cart.ID] = &clone
	return nil
}

func (r *MemoryCarts) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.carts[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.carts, id)
	return nil
}

// --- orders ---

type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders {
	return &MemoryOrders{store: store}
}

func (r *MemoryOrders) Create(ctx context.Context, order *models.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	clone := cloneOrder(order)
	r.store.orders[order.ID] = clone
	return nil
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = append([]models.OrderItem(nil), order.Items...)
	clone.Tracking.Updates = append([]models.TrackingUpdate(nil), order.Tracking.Updates...)
	return &clone
}

func (r *MemoryOrders) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	order, ok := r.store.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *MemoryOrders) GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	order, ok := r.store.orders[id]
	if !ok || order.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *MemoryOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var orders []*models.Order
	for _, order := range r.store.orders {
		if order.UserID == userID {
			orders = append(orders, cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *MemoryOrders) ListPrescriptionRequired(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var orders []*models.Order
	for _, order := range r.store.orders {
		if order.UserID != userID || !order.PrescriptionRequired {
			continue
		}
		if order.PrescriptionStatus == models.PrescriptionStatePending ||
			order.PrescriptionStatus == models.PrescriptionStateRejected {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *MemoryOrders) List(ctx context.Context, filter OrderFilter) ([]*models.Order, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*models.Order
	for _, order := range r.store.orders {
		if filter.Status != "" && order.OrderStatus != filter.Status {
			continue
		}
		if filter.PrescriptionRequired != nil && order.PrescriptionRequired != *filter.PrescriptionRequired {
			continue
		}
		matched = append(matched, cloneOrder(order))
	}

	sort.Slice(matched, func(i, j int) bool {
		if filter.SortDesc {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryOrders) Update(ctx context.Context, order *models.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orders[order.ID]; !ok {
		return apperrors.ErrNotFound
	}
	order.UpdatedAt = time.Now()
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

// --- payments ---

type MemoryPayments struct{ store *MemoryStore }

func NewMemoryPayments(store *MemoryStore) *MemoryPayments {
	return &MemoryPayments{store: store}
}

func (r *MemoryPayments) Create(ctx context.Context, payment *models.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	clone := *payment
	r.store.payments[payment.ID] = &clone
	return nil
}

func (r *MemoryPayments) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	payment, ok := r.store.payments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *payment
	return &clone, nil
}

func (r *MemoryPayments) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, payment := range r.store.payments {
		if payment.OrderID == orderID {
			clone := *payment
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *MemoryPayments) ListByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]*models.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var payments []*models.Payment
	for _, payment := range r.store.payments {
		if payment.OrderID == orderID {
			clone := *payment
			payments = append(payments, &clone)
		}
	}
	return payments, nil
}

func (r *MemoryPayments) Update(ctx context.Context, payment *models.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.payments[payment.ID]; !ok {
		return apperrors.ErrNotFound
	}
	payment.UpdatedAt = time.Now()
	clone := *payment
	r.store.payments[payment.ID] = &clone
	return nil
}

// --- prescriptions ---

type MemoryPrescriptions struct{ store *MemoryStore }

func NewMemoryPrescriptions(store *MemoryStore) *MemoryPrescriptions {
	return &MemoryPrescriptions{store: store}
}

func (r *MemoryPrescriptions) Create(ctx context.Context, prescription *models.Prescription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if prescription.ID.IsZero() {
		prescription.ID = primitive.NewObjectID()
	}
	prescription.CreatedAt = time.Now()
	clone := *prescription
	r.store.prescriptions[prescription.ID] = &clone
	return nil
}

func (r *MemoryPrescriptions) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Prescription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	prescription, ok := r.store.prescriptions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *prescription
	return &clone, nil
}

func (r *MemoryPrescriptions) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Prescription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, prescription := range r.store.prescriptions {
		if prescription.OrderID == orderID {
			clone := *prescription
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *MemoryPrescriptions) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Prescription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var prescriptions []*models.Prescription
	for _, prescription := range r.store.prescriptions {
		if prescription.UserID == userID {
			clone := *prescription
			prescriptions = append(prescriptions, &clone)
		}
	}
	sort.Slice(prescriptions, func(i, j int) bool {
		return prescriptions[i].CreatedAt.After(prescriptions[j].CreatedAt)
	})
	return prescriptions, nil
}

func (r *MemoryPrescriptions) ListPending(ctx context.Context) ([]*models.Prescription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var prescriptions []*models.Prescription
	for _, prescription := range r.store.prescriptions {
		if prescription.VerificationStatus == models.VerificationStatusPending {
			clone := *prescription
			prescriptions = append(prescriptions, &clone)
		}
	}
	sort.Slice(prescriptions, func(i, j int) bool {
		return prescriptions[i].CreatedAt.Before(prescriptions[j].CreatedAt)
	})
	return prescriptions, nil
}

func (r *MemoryPrescriptions) Update(ctx context.Context, prescription *models.Prescription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.prescriptions[prescription.ID]; !ok {
		return apperrors.ErrNotFound
	}
	clone := *prescription
	r.store.prescriptions[prescription.ID] = &clone
	return nil
}
