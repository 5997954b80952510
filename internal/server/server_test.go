package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medikart/medikart-backend/internal/auth"
	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/events"
	"github.com/medikart/medikart-backend/internal/handlers"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
	"github.com/medikart/medikart-backend/internal/service"
	"github.com/medikart/medikart-backend/internal/uploads"
)

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

type testStack struct {
	router *gin.Engine
	users  *repository.MemoryUsers
	tokens *auth.TokenManager
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env: "development",
		Server: config.ServerConfig{
			Port: 0,
		},
		JWT: config.JWTConfig{
			Secret: "test-secret",
			Expiry: time.Hour,
		},
		Upload: config.UploadConfig{
			Dir:          t.TempDir(),
			BaseURL:      "/uploads/prescriptions",
			MaxSizeBytes: 5 * 1024 * 1024,
		},
		CORS: config.CORSConfig{
			AllowOrigins: []string{"http://localhost:5173"},
		},
		TaxRate: 0.10,
	}

	store := repository.NewMemoryStore()
	users := repository.NewMemoryUsers(store)
	products := repository.NewMemoryProducts(store)
	carts := repository.NewMemoryCarts(store)
	orders := repository.NewMemoryOrders(store)
	payments := repository.NewMemoryPayments(store)
	prescriptions := repository.NewMemoryPrescriptions(store)

	tokens := auth.NewTokenManager(cfg.JWT)
	gateway := service.NewSimulatedGatewayWithSeed(42)

	paymentService := service.NewPaymentService(payments, orders, gateway)
	orderService := service.NewOrderService(orders, carts, products, prescriptions, paymentService, events.NewMockPublisher(), cfg.TaxRate)

	uploader, err := uploads.NewDiskUploader(cfg.Upload)
	if err != nil {
		t.Fatalf("uploader: %v", err)
	}

	h := handlers.NewHandlers(
		service.NewAuthService(users, tokens),
		service.NewCatalogService(products, nil),
		service.NewCartService(carts, products),
		orderService,
		paymentService,
		service.NewPrescriptionService(prescriptions, orders, orderService),
		service.NewTrackingService(orders),
		uploader,
		cfg,
	)

	srv := New(cfg, h, tokens, users)
	return &testStack{router: srv.Router(), users: users, tokens: tokens}
}

func (s *testStack) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return env
}

func (s *testStack) registerUser(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test Account",
		"email":    email,
		"password": "s3cretpw",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode register data: %v", err)
	}
	return data.Token
}

// staffToken provisions a staff account directly; registration never
// grants elevated roles.
func (s *testStack) staffToken(t *testing.T, email string, role models.Role) string {
	t.Helper()
	user := &models.User{
		Name:  "Staff Account",
		Email: email,
		Role:  role,
	}
	if err := s.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create staff user: %v", err)
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		t.Fatalf("issue staff token: %v", err)
	}
	return token
}

func (s *testStack) createProduct(t *testing.T, adminToken, name string, price float64, stock int) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/products", adminToken, gin.H{
		"name":          name,
		"price":         price,
		"category":      "otc",
		"stockQuantity": stock,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create product: status %d body %s", w.Code, w.Body.String())
	}
	var product models.Product
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	return product.ID.Hex()
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestStack(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	s := newTestStack(t)
	s.registerUser(t, "user@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "user@example.com",
		"password": "s3cretpw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success || env.Timestamp == "" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestStack(t)

	w := s.do(t, http.MethodGet, "/api/cart", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success {
		t.Error("success = true on 401")
	}
}

func TestRoleGuard(t *testing.T) {
	s := newTestStack(t)
	userToken := s.registerUser(t, "user@example.com")

	w := s.do(t, http.MethodGet, "/api/orders/all", userToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRegisterCannotGrantStaffRole(t *testing.T) {
	s := newTestStack(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Sneaky Account",
		"email":    "sneaky@example.com",
		"password": "s3cretpw",
		"role":     "admin",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}

	var data struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode register data: %v", err)
	}
	if data.User.Role != models.RoleUser {
		t.Errorf("role = %s, want user", data.User.Role)
	}

	w = s.do(t, http.MethodGet, "/api/orders/all", data.Token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("staff route with self-registered token: status %d, want 403", w.Code)
	}
}

func TestCheckoutFlowCOD(t *testing.T) {
	s := newTestStack(t)
	adminToken := s.staffToken(t, "admin@example.com", models.RoleAdmin)
	userToken := s.registerUser(t, "buyer@example.com")

	productID := s.createProduct(t, adminToken, "Paracetamol", 50, 10)

	w := s.do(t, http.MethodPost, "/api/cart/add", userToken, gin.H{
		"productId": productID,
		"quantity":  2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add to cart: status %d body %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/orders/create", userToken, gin.H{
		"paymentMethod": "cod",
		"shippingAddress": gin.H{
			"street":  "42 MG Road",
			"city":    "Bengaluru",
			"state":   "Karnataka",
			"zipCode": "560001",
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: status %d body %s", w.Code, w.Body.String())
	}

	var data struct {
		Order   models.Order   `json:"order"`
		Payment models.Payment `json:"payment"`
	}
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if data.Payment.Status != models.PaymentStatusPending {
		t.Errorf("COD payment status = %s, want pending", data.Payment.Status)
	}
	if data.Order.TotalAmount != 210 {
		t.Errorf("totalAmount = %v, want 210", data.Order.TotalAmount)
	}

	// cart is gone after checkout
	w = s.do(t, http.MethodGet, "/api/cart", userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart: status %d", w.Code)
	}
	var cart models.Cart
	env = decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("cart not empty after checkout: %+v", cart.Items)
	}

	// owner can read tracking, admin listing sees the order
	orderID := data.Order.ID.Hex()
	w = s.do(t, http.MethodGet, "/api/tracking/"+orderID, userToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get tracking: status %d body %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/orders/all", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin list: status %d body %s", w.Code, w.Body.String())
	}
}

func TestInvalidObjectIDParam(t *testing.T) {
	s := newTestStack(t)

	w := s.do(t, http.MethodGet, "/api/products/not-an-id", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProductCatalogPublicRead(t *testing.T) {
	s := newTestStack(t)
	adminToken := s.staffToken(t, "admin@example.com", models.RoleAdmin)

	for i := 0; i < 3; i++ {
		s.createProduct(t, adminToken, fmt.Sprintf("Product %d", i), 10, 5)
	}

	w := s.do(t, http.MethodGet, "/api/products?limit=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list products: status %d", w.Code)
	}
	var list struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
	}
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 3 || len(list.Products) != 2 {
		t.Errorf("total = %d len = %d, want 3/2", list.Total, len(list.Products))
	}

	// writes require the admin role
	w = s.do(t, http.MethodPost, "/api/products", "", gin.H{"name": "X"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create: status %d, want 401", w.Code)
	}
}
