package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"food-delivery/internal/domain"
	"food-delivery/internal/payment"
	ordersvc "food-delivery/internal/service/order"
	restaurantsvc "food-delivery/internal/service/restaurant"
	usersvc "food-delivery/internal/service/user"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubUserSvc struct {
	user      *domain.User
	lookupErr error
	loginErr  error
	signErr   error
	loggedOut []string
}

func (s *stubUserSvc) Signup(_ context.Context, _ usersvc.SignupInput) (*domain.User, usersvc.Session, error) {
	return s.user, usersvc.Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, s.signErr
}

func (s *stubUserSvc) Login(_ context.Context, _, _ string) (*domain.User, usersvc.Session, error) {
	return s.user, usersvc.Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, s.loginErr
}

func (s *stubUserSvc) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubUserSvc) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if token != "good" {
		return nil, usersvc.ErrInvalidToken
	}
	return s.user, nil
}

func (s *stubUserSvc) Get(_ context.Context, _ string) (*domain.User, error) {
	return s.user, nil
}

func (s *stubUserSvc) UpdateProfile(_ context.Context, _ string, _ usersvc.ProfileInput) (*domain.User, error) {
	return s.user, nil
}

func (s *stubUserSvc) TokenTTL() time.Duration { return time.Hour }

type stubRestaurantSvc struct {
	text, query string
	cuisines    []string
	err         error
}

func (s *stubRestaurantSvc) Save(_ context.Context, ownerID string, in restaurantsvc.Input) (*domain.Restaurant, error) {
	return &domain.Restaurant{OwnerID: ownerID, Name: in.Name}, s.err
}

func (s *stubRestaurantSvc) GetOwn(_ context.Context, _ string) (*domain.Restaurant, error) {
	return nil, domain.ErrNotFound
}

func (s *stubRestaurantSvc) Get(_ context.Context, id string) (*domain.Restaurant, error) {
	return &domain.Restaurant{ID: id}, s.err
}

func (s *stubRestaurantSvc) Search(_ context.Context, text, query string, cuisines []string) ([]domain.Restaurant, error) {
	s.text, s.query, s.cuisines = text, query, cuisines
	return []domain.Restaurant{}, s.err
}

func (s *stubRestaurantSvc) AddMenu(_ context.Context, _ string, in restaurantsvc.MenuInput) (*domain.MenuItem, error) {
	return &domain.MenuItem{Name: in.Name, Price: in.Price}, s.err
}

func (s *stubRestaurantSvc) UpdateMenu(_ context.Context, _, id string, in restaurantsvc.MenuInput) (*domain.MenuItem, error) {
	return &domain.MenuItem{ID: id, Name: in.Name}, s.err
}

func (s *stubRestaurantSvc) ListOrders(_ context.Context, _ string) ([]domain.Order, error) {
	return []domain.Order{}, s.err
}

type stubOrderSvc struct {
	session    *payment.Session
	err        error
	result     ordersvc.WebhookResult
	gotUser    string
	gotReq     ordersvc.CheckoutRequest
	gotPayload string
	gotSig     string
	orders     []domain.Order
}

func (s *stubOrderSvc) CreateCheckoutSession(_ context.Context, userID string, in ordersvc.CheckoutRequest) (*payment.Session, error) {
	s.gotUser, s.gotReq = userID, in
	return s.session, s.err
}

func (s *stubOrderSvc) HandleWebhook(_ context.Context, payload []byte, signature string) (ordersvc.WebhookResult, error) {
	s.gotPayload, s.gotSig = string(payload), signature
	return s.result, s.err
}

func (s *stubOrderSvc) ListOrders(_ context.Context, _ string) ([]domain.Order, error) {
	return s.orders, s.err
}

func testRouter(t *testing.T, users *stubUserSvc, restaurants *stubRestaurantSvc, orders *stubOrderSvc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if users == nil {
		users = &stubUserSvc{user: &domain.User{ID: "u1", Fullname: "Ann", Email: "ann@example.com"}}
	}
	if restaurants == nil {
		restaurants = &stubRestaurantSvc{}
	}
	if orders == nil {
		orders = &stubOrderSvc{}
	}
	router, err := buildRouter(logDiscard(), nil, Deps{UserSvc: users, RestaurantSvc: restaurants, OrderSvc: orders}, "http://localhost:5173")
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func doRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var bearer = map[string]string{"Authorization": "Bearer good"}

func TestBuildRouter_RequiresServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if _, err := buildRouter(logDiscard(), nil, Deps{}, ""); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(testRouter(t, nil, nil, nil), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doRequest(testRouter(t, nil, nil, nil), http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without db, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name    string
		users   *stubUserSvc
		headers map[string]string
		cookie  string
		code    int
		message string
	}{
		{name: "missing", code: http.StatusUnauthorized, message: "User not authenticated"},
		{name: "invalid", headers: map[string]string{"Authorization": "Bearer bad"}, code: http.StatusUnauthorized, message: "Invalid token"},
		{name: "lookup error", users: &stubUserSvc{lookupErr: errors.New("db down")}, headers: bearer, code: http.StatusInternalServerError, message: "Internal server error"},
		{name: "bearer", headers: bearer, code: http.StatusOK},
		{name: "cookie", cookie: "good", code: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := tc.users
			if users == nil {
				users = &stubUserSvc{user: &domain.User{ID: "u1"}}
			}
			router := testRouter(t, users, nil, &stubOrderSvc{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/order", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: tokenCookie, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d body=%s", tc.code, rec.Code, rec.Body.String())
			}
			if tc.message != "" && !strings.Contains(rec.Body.String(), tc.message) {
				t.Fatalf("expected message %q, got %s", tc.message, rec.Body.String())
			}
		})
	}
}

func TestSignupHandler_CreatedSetsCookie(t *testing.T) {
	router := testRouter(t, &stubUserSvc{user: &domain.User{ID: "u1", Email: "user@example.com", PasswordHash: "secret-hash"}}, nil, nil)

	rec := doRequest(router, http.MethodPost, "/api/v1/user/signup", `{"fullname":"U","email":"user@example.com","password":"Abcdefg1"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"user@example.com"`) || strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "token=tok") {
		t.Fatalf("expected token cookie, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestSignupHandler_DuplicateEmail(t *testing.T) {
	users := &stubUserSvc{signErr: errors.Join(errors.New("user already exists with this email"), domain.ErrAlreadyExists)}
	rec := doRequest(testRouter(t, users, nil, nil), http.MethodPost, "/api/v1/user/signup", `{"email":"a@b.c"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	users := &stubUserSvc{loginErr: usersvc.ErrInvalidCredentials}
	rec := doRequest(testRouter(t, users, nil, nil), http.MethodPost, "/api/v1/user/login", `{"email":"a@example.com","password":"x"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect email or password") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLogoutHandler_RevokesPresentedToken(t *testing.T) {
	users := &stubUserSvc{}
	rec := doRequest(testRouter(t, users, nil, nil), http.MethodPost, "/api/v1/user/logout", "", bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(users.loggedOut) != 1 || users.loggedOut[0] != "good" {
		t.Fatalf("expected presented token to be revoked, got %v", users.loggedOut)
	}
}

func TestCheckoutHandler_ReturnsSession(t *testing.T) {
	orders := &stubOrderSvc{session: &payment.Session{ID: "cs_1", URL: "https://pay.example/cs_1"}}
	router := testRouter(t, nil, nil, orders)

	body := `{"cartItems":[{"menuId":"m1","name":"Pizza","image":"i.png","price":500,"quantity":2}],` +
		`"deliveryDetails":{"name":"Ann","email":"ann@example.com","address":"1 Main","city":"Pune"},"restaurantId":"r1"}`
	rec := doRequest(router, http.MethodPost, "/api/v1/order/checkout/create-checkout-session", body, bearer)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"url":"https://pay.example/cs_1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if orders.gotUser != "u1" || orders.gotReq.RestaurantID != "r1" || len(orders.gotReq.CartItems) != 1 || orders.gotReq.CartItems[0].Quantity != 2 {
		t.Fatalf("unexpected request forwarded: user=%s req=%+v", orders.gotUser, orders.gotReq)
	}
}

func TestCheckoutHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{err: domain.ErrNotFound, code: http.StatusNotFound, message: "Restaurant not found."},
		{err: errors.Join(domain.ErrInvalidInput), code: http.StatusBadRequest},
		{err: domain.ErrInvalidState, code: http.StatusBadRequest},
		{err: domain.ErrGateway, code: http.StatusBadRequest},
		{err: errors.New("pq: connection refused at 10.0.0.1"), code: http.StatusInternalServerError, message: "Internal server error"},
	}
	for _, tc := range cases {
		router := testRouter(t, nil, nil, &stubOrderSvc{err: tc.err})
		rec := doRequest(router, http.MethodPost, "/api/v1/order/checkout/create-checkout-session", `{"restaurantId":"r1"}`, bearer)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Fatalf("%v: expected failure body, got %s", tc.err, rec.Body.String())
		}
		if tc.message != "" && !strings.Contains(rec.Body.String(), tc.message) {
			t.Fatalf("%v: expected %q, got %s", tc.err, tc.message, rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), "10.0.0.1") {
			t.Fatalf("internal detail leaked: %s", rec.Body.String())
		}
	}
}

func TestCheckoutHandler_InvalidInputMessage(t *testing.T) {
	err := errors.New("menu item id ghost not found")
	router := testRouter(t, nil, nil, &stubOrderSvc{err: errors.Join(domain.ErrInvalidInput, err)})
	rec := doRequest(router, http.MethodPost, "/api/v1/order/checkout/create-checkout-session", `{}`, bearer)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "ghost") {
		t.Fatalf("expected 400 naming the menu id, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestWebhookHandler_PassesRawPayload(t *testing.T) {
	orders := &stubOrderSvc{result: ordersvc.WebhookResult{Confirmed: true, OrderID: "o1"}}
	router := testRouter(t, nil, nil, orders)
	payload := `{"id":"evt_1",  "type":"checkout.session.completed"}`

	rec := doRequest(router, http.MethodPost, "/api/v1/order/webhook", payload, map[string]string{signatureHeader: "t=1,v1=abc"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if orders.gotPayload != payload || orders.gotSig != "t=1,v1=abc" {
		t.Fatalf("payload or signature altered: %q %q", orders.gotPayload, orders.gotSig)
	}
}

func TestWebhookHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{err: errors.Join(domain.ErrGateway, payment.ErrInvalidSignature), code: http.StatusBadRequest},
		{err: domain.ErrNotFound, code: http.StatusNotFound},
		{err: errors.New("db down"), code: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		router := testRouter(t, nil, nil, &stubOrderSvc{err: tc.err})
		rec := doRequest(router, http.MethodPost, "/api/v1/order/webhook", `{}`, map[string]string{signatureHeader: "sig"})
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestListOrdersHandler_EmptyList(t *testing.T) {
	rec := doRequest(testRouter(t, nil, nil, &stubOrderSvc{orders: []domain.Order{}}), http.MethodGet, "/api/v1/order", "", bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"orders":[]`) || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSearchHandler_SplitsCuisines(t *testing.T) {
	restaurants := &stubRestaurantSvc{}
	router := testRouter(t, nil, restaurants, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/restaurant/search/pune?searchQuery=pizza&selectedCuisines=Italian,Indian", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if restaurants.text != "pune" || restaurants.query != "pizza" || len(restaurants.cuisines) != 2 {
		t.Fatalf("unexpected search args %q %q %v", restaurants.text, restaurants.query, restaurants.cuisines)
	}
}

func TestGetOwnRestaurant_NotFound(t *testing.T) {
	rec := doRequest(testRouter(t, nil, nil, nil), http.MethodGet, "/api/v1/restaurant", "", bearer)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMenuRoutesRequireAuth(t *testing.T) {
	rec := doRequest(testRouter(t, nil, nil, nil), http.MethodPost, "/api/v1/menu", `{"name":"Pizza","price":10}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = doRequest(testRouter(t, nil, nil, nil), http.MethodPost, "/api/v1/menu", `{"name":"Pizza","price":10}`, bearer)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
}
