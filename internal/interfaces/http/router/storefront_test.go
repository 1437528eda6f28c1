package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/delivery/storefront/internal/application/admin"
	"github.com/delivery/storefront/internal/application/identity"
	"github.com/delivery/storefront/internal/application/ordering"
	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/domain/catalog"
	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/domain/shared"
	"github.com/delivery/storefront/internal/infrastructure/cache"
	"github.com/delivery/storefront/internal/infrastructure/logger"
	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
	"github.com/delivery/storefront/internal/interfaces/http/dto"
	"github.com/delivery/storefront/internal/interfaces/http/handler"
	"github.com/delivery/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const cookieName = "storefront_session"

// MockAuthenticator is a mock implementation of identity.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, creds account.Credentials) (account.Grant, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(account.Grant), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, reg account.Registration) (account.Grant, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(account.Grant), args.Error(1)
}

// MockUsers implements both the profile gateway and the admin user directory
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Me(ctx context.Context) (account.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).(account.Profile), args.Error(1)
}

func (m *MockUsers) UpdateMe(ctx context.Context, upd account.ProfileUpdate) (account.Profile, error) {
	args := m.Called(ctx, upd)
	return args.Get(0).(account.Profile), args.Error(1)
}

func (m *MockUsers) List(ctx context.Context) (shared.Paginated[account.Profile], error) {
	args := m.Called(ctx)
	return args.Get(0).(shared.Paginated[account.Profile]), args.Error(1)
}

func (m *MockUsers) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockRestaurants implements every restaurant service port
type MockRestaurants struct {
	mock.Mock
}

func (m *MockRestaurants) List(ctx context.Context, q catalog.ListQuery) (shared.Paginated[catalog.Restaurant], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(shared.Paginated[catalog.Restaurant]), args.Error(1)
}

func (m *MockRestaurants) Get(ctx context.Context, id int64) (catalog.Restaurant, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Restaurant), args.Error(1)
}

func (m *MockRestaurants) Dishes(ctx context.Context, id int64) ([]catalog.Dish, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]catalog.Dish), args.Error(1)
}

func (m *MockRestaurants) CreateRestaurant(ctx context.Context, in catalog.RestaurantInput) (catalog.Restaurant, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.Restaurant), args.Error(1)
}

func (m *MockRestaurants) UpdateRestaurant(ctx context.Context, id int64, in catalog.RestaurantInput) (catalog.Restaurant, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.Restaurant), args.Error(1)
}

func (m *MockRestaurants) DeleteRestaurant(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRestaurants) CreateDish(ctx context.Context, restaurantID int64, in catalog.DishInput) (catalog.Dish, error) {
	args := m.Called(ctx, restaurantID, in)
	return args.Get(0).(catalog.Dish), args.Error(1)
}

func (m *MockRestaurants) UpdateDish(ctx context.Context, dishID int64, in catalog.DishInput) (catalog.Dish, error) {
	args := m.Called(ctx, dishID, in)
	return args.Get(0).(catalog.Dish), args.Error(1)
}

func (m *MockRestaurants) DeleteDish(ctx context.Context, dishID int64) error {
	return m.Called(ctx, dishID).Error(0)
}

// MockOrders implements the checkout gateway and the admin order directory
type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Create(ctx context.Context, s *order.Submission) (order.Order, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrders) Mine(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrders) ByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, orderID int64, status order.Status) error {
	return m.Called(ctx, orderID, status).Error(0)
}

type storefront struct {
	engine      *gin.Engine
	auth        *MockAuthenticator
	users       *MockUsers
	restaurants *MockRestaurants
	orders      *MockOrders
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	log := zaptest.NewLogger(t)
	middleware.SetupValidator()

	store := cache.NewInMemorySessionStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	carts := cache.NewInMemoryCartRepository(time.Hour)
	guard := cache.NewInMemorySubmissionGuard()
	manager := session.NewManager(store)

	sf := &storefront{
		auth:        new(MockAuthenticator),
		users:       new(MockUsers),
		restaurants: new(MockRestaurants),
		orders:      new(MockOrders),
	}

	authService := identity.NewAuthService(sf.auth, sf.users, carts, log)
	cartService := ordering.NewCartService(sf.restaurants, carts, log)
	checkout := ordering.NewCheckoutService(sf.restaurants, sf.orders, carts, guard, ordering.GuardTTL(time.Second, 0), log)
	history := ordering.NewOrderHistory(sf.orders, ordering.NewNameResolver(sf.restaurants, 2, log))
	adminService := admin.NewService(sf.users, sf.orders, sf.restaurants, log)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Session(manager, middleware.SessionConfig{CookieName: cookieName, MaxAge: time.Hour}))

	r := NewRouter(engine)
	for _, registrar := range Storefront(Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Catalog: handler.NewCatalogHandler(ordering.NewBrowser(sf.restaurants), cartService),
		Cart:    handler.NewCartHandler(cartService, checkout),
		Profile: handler.NewProfileHandler(authService, history),
		Admin:   handler.NewAdminHandler(adminService),
	}, nil) {
		r.Register(registrar)
	}
	r.Setup()

	sf.engine = engine
	return sf
}

// browser keeps the session cookie between requests
type browser struct {
	t      *testing.T
	sf     *storefront
	cookie *http.Cookie
}

func (sf *storefront) browser(t *testing.T) *browser {
	return &browser{t: t, sf: sf}
}

func (b *browser) do(method, path, body string) (*httptest.ResponseRecorder, dto.Response) {
	b.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.sf.engine.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			b.cookie = c
		}
	}

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(b.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (b *browser) login(roles ...string) {
	b.t.Helper()
	b.sf.auth.On("Login", mock.Anything, mock.Anything).Return(account.Grant{
		AccessToken: "token",
		UserID:      7,
		FullName:    "Ann Lee",
		Roles:       session.NewRoleSet(roles...),
	}, nil).Once()
	w, _ := b.do(http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret"}`)
	require.Equal(b.t, http.StatusOK, w.Code)
}

func pastaPlace() catalog.Restaurant {
	return catalog.Restaurant{
		ID:      3,
		Name:    "Pasta Place",
		Cuisine: "Italian",
		Address: "1 Long Street, Rome",
		Dishes: []catalog.Dish{
			{ID: 1, Name: "Carbonara", Price: decimal.RequireFromString("10.00")},
			{ID: 2, Name: "Bruschetta", Price: decimal.RequireFromString("5.50")},
		},
	}
}

func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data should be an object, got %T", resp.Data)
	return m
}

func TestStorefront_RouteGuard(t *testing.T) {
	sf := newStorefront(t)

	t.Run("anonymous visitor is sent to login", func(t *testing.T) {
		w, resp := sf.browser(t).do(http.MethodGet, "/profile", "")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, "/login", resp.Redirect)
		assert.Equal(t, dto.ErrCodeLoginRequired, resp.Error.Code)
	})

	t.Run("customer is sent home from admin views", func(t *testing.T) {
		b := sf.browser(t)
		b.login("USER")

		w, resp := b.do(http.MethodGet, "/admin/users", "")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
		sf.users.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("public views need no session", func(t *testing.T) {
		sf.restaurants.On("List", mock.Anything, catalog.ListQuery{Cuisine: "Italian"}).
			Return(shared.NewPaginated([]catalog.Restaurant{pastaPlace()}, 1, 0, 10), nil).Once()

		w, resp := sf.browser(t).do(http.MethodGet, "/restaurants?cuisine=Italian", "")

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("login and registration views are public", func(t *testing.T) {
		for _, path := range []string{"/login", "/register"} {
			w, resp := sf.browser(t).do(http.MethodGet, path, "")

			assert.Equal(t, http.StatusOK, w.Code, path)
			assert.Equal(t, false, dataMap(t, resp)["authenticated"], path)
		}
	})

	t.Run("negative page is rejected", func(t *testing.T) {
		w, resp := sf.browser(t).do(http.MethodGet, "/restaurants?page=-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})
}

func TestStorefront_LoginRoundTrip(t *testing.T) {
	sf := newStorefront(t)
	sf.restaurants.On("Get", mock.Anything, int64(3)).Return(pastaPlace(), nil)
	b := sf.browser(t)

	// picking a dish before login remembers it and the menu
	w, resp := b.do(http.MethodPost, "/restaurants/3/cart/items", `{"dishId":1}`)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, dto.ErrCodeLoginRequired, resp.Error.Code)

	sf.auth.On("Login", mock.Anything, account.Credentials{Email: "ann@example.com", Password: "secret"}).
		Return(account.Grant{AccessToken: "token", FullName: "Ann Lee", Roles: session.NewRoleSet("USER")}, nil).Once()
	w, resp = b.do(http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/restaurants/3", resp.Redirect)
	assert.Equal(t, true, dataMap(t, resp)["authenticated"])

	// the menu adds the remembered dish once
	w, resp = b.do(http.MethodGet, "/restaurants/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	menu := dataMap(t, resp)
	assert.NotNil(t, menu["added"])
	assert.Equal(t, float64(1), menu["cart"].(map[string]any)["itemCount"])

	w, resp = b.do(http.MethodGet, "/restaurants/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, dataMap(t, resp)["added"])

	// the redirect was consumed
	sf.auth.On("Login", mock.Anything, mock.Anything).
		Return(account.Grant{AccessToken: "token2", FullName: "Ann Lee", Roles: session.NewRoleSet("USER")}, nil).Once()
	_, resp = b.do(http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret"}`)
	assert.Equal(t, "/", resp.Redirect)
}

func TestStorefront_Checkout(t *testing.T) {
	sf := newStorefront(t)
	sf.restaurants.On("Get", mock.Anything, int64(3)).Return(pastaPlace(), nil)
	b := sf.browser(t)
	b.login("USER")

	w, _ := b.do(http.MethodPost, "/restaurants/3/checkout", `{"paymentMethod":"CARD"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "empty cart")
	sf.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	_, _ = b.do(http.MethodGet, "/restaurants/3", "")
	w, _ = b.do(http.MethodPost, "/restaurants/3/cart/items", `{"dishId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, resp := b.do(http.MethodPut, "/restaurants/3/cart/items/1", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30", dataMap(t, resp)["total"])

	w, resp = b.do(http.MethodPost, "/restaurants/3/checkout", `{"paymentMethod":"BITCOIN"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidPaymentMethod, resp.Error.Code)

	sf.orders.On("Create", mock.Anything, mock.Anything).
		Return(order.Order{ID: 99, Status: order.StatusPlaced}, nil).Once()
	w, resp = b.do(http.MethodPost, "/restaurants/3/checkout", `{"paymentMethod":"card"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	confirmation := dataMap(t, resp)
	assert.Equal(t, float64(99), confirmation["orderId"])
	assert.Equal(t, "PLACED", confirmation["status"])
	assert.Equal(t, "30", confirmation["total"])

	w, resp = b.do(http.MethodPost, "/restaurants/3/checkout", `{"paymentMethod":"card"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeCartEmpty, resp.Error.Code)
	sf.orders.AssertNumberOfCalls(t, "Create", 1)
}

func TestStorefront_CartBelongsToOneRestaurant(t *testing.T) {
	sf := newStorefront(t)
	sf.restaurants.On("Get", mock.Anything, int64(3)).Return(pastaPlace(), nil)
	b := sf.browser(t)
	b.login("USER")

	_, _ = b.do(http.MethodGet, "/restaurants/3", "")
	w, _ := b.do(http.MethodPost, "/restaurants/3/cart/items", `{"dishId":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := b.do(http.MethodPut, "/restaurants/4/cart/items/1", `{"quantity":9}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeCartLineNotFound, resp.Error.Code)

	w, resp = b.do(http.MethodDelete, "/restaurants/4/cart/items/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), dataMap(t, resp)["restaurantId"])
	assert.Equal(t, float64(0), dataMap(t, resp)["itemCount"])

	w, resp = b.do(http.MethodGet, "/restaurants/3/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := dataMap(t, resp)
	assert.Equal(t, float64(1), view["itemCount"])
	assert.Equal(t, "10", view["total"])
}

func TestStorefront_BackendErrors(t *testing.T) {
	sf := newStorefront(t)

	t.Run("expired token forces login", func(t *testing.T) {
		b := sf.browser(t)
		b.login("USER")
		sf.users.On("Me", mock.Anything).Return(account.Profile{}, &serviceclient.Error{
			Kind:       serviceclient.KindUnauthorized,
			StatusCode: http.StatusUnauthorized,
			Redirect:   "/login",
		}).Once()

		w, resp := b.do(http.MethodGet, "/profile", "")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("unreachable restaurant service", func(t *testing.T) {
		sf.restaurants.On("Get", mock.Anything, int64(8)).Return(catalog.Restaurant{}, &serviceclient.Error{
			Kind: serviceclient.KindNetwork,
			Err:  context.DeadlineExceeded,
		}).Once()

		w, resp := sf.browser(t).do(http.MethodGet, "/restaurants/8", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeServiceUnavailable, resp.Error.Code)
	})

	t.Run("order list names restaurants", func(t *testing.T) {
		b := sf.browser(t)
		b.login("USER")
		sf.restaurants.On("Get", mock.Anything, int64(3)).Return(pastaPlace(), nil).Once()
		sf.orders.On("Mine", mock.Anything).Return([]order.Order{{ID: 1, RestaurantID: 3}}, nil).Once()

		w, resp := b.do(http.MethodGet, "/orders", "")

		require.Equal(t, http.StatusOK, w.Code)
		orders, ok := resp.Data.([]any)
		require.True(t, ok)
		require.Len(t, orders, 1)
		assert.Equal(t, "Pasta Place", orders[0].(map[string]any)["restaurantName"])
	})
}

func TestStorefront_Admin(t *testing.T) {
	sf := newStorefront(t)
	b := sf.browser(t)
	b.login("USER", "ADMIN")

	t.Run("delete needs confirmation", func(t *testing.T) {
		w, resp := b.do(http.MethodDelete, "/admin/users/5", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeConfirmationRequired, resp.Error.Code)
		sf.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

		sf.users.On("Delete", mock.Anything, int64(5)).Return(nil).Once()
		w, _ = b.do(http.MethodDelete, "/admin/users/5?confirm=true", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("order status", func(t *testing.T) {
		w, resp := b.do(http.MethodPatch, "/admin/orders/77/status", `{"status":"SHIPPED"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidOrderStatus, resp.Error.Code)

		sf.orders.On("UpdateStatus", mock.Anything, int64(77), order.StatusReady).Return(nil).Once()
		w, resp = b.do(http.MethodPatch, "/admin/orders/77/status", `{"status":"ready"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "READY", dataMap(t, resp)["status"])
	})

	t.Run("restaurant constraints", func(t *testing.T) {
		w, resp := b.do(http.MethodPost, "/admin/restaurants", `{"name":"Ab","cuisine":"Thai","address":"short"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Len(t, resp.Error.Details, 2)

		in := catalog.RestaurantInput{Name: "Thai Garden", Cuisine: "Thai", Address: "12 Orchard Road"}
		sf.restaurants.On("CreateRestaurant", mock.Anything, in).Return(catalog.Restaurant{ID: 4, Name: in.Name}, nil).Once()
		w, _ = b.do(http.MethodPost, "/admin/restaurants", `{"name":"Thai Garden","cuisine":"Thai","address":"12 Orchard Road"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("dish price must be positive", func(t *testing.T) {
		w, resp := b.do(http.MethodPost, "/admin/restaurants/4/dishes",
			`{"name":"Pad Thai","description":"Rice noodles, peanuts","price":0,"imageUrl":"https://img.example.com/p.png"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidationRange, resp.Error.Code)
		sf.restaurants.AssertNotCalled(t, "CreateDish", mock.Anything, mock.Anything, mock.Anything)
	})
}
