package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"food-delivery/internal/domain"
	"food-delivery/internal/payment"
	ordersvc "food-delivery/internal/service/order"
	restaurantsvc "food-delivery/internal/service/restaurant"
	usersvc "food-delivery/internal/service/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, usersvc.Session, error)
	Login(ctx context.Context, email, password string) (*domain.User, usersvc.Session, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in usersvc.ProfileInput) (*domain.User, error)
	TokenTTL() time.Duration
}

type restaurantService interface {
	Save(ctx context.Context, ownerID string, in restaurantsvc.Input) (*domain.Restaurant, error)
	GetOwn(ctx context.Context, ownerID string) (*domain.Restaurant, error)
	Get(ctx context.Context, id string) (*domain.Restaurant, error)
	Search(ctx context.Context, text, query string, cuisines []string) ([]domain.Restaurant, error)
	AddMenu(ctx context.Context, ownerID string, in restaurantsvc.MenuInput) (*domain.MenuItem, error)
	UpdateMenu(ctx context.Context, ownerID, menuID string, in restaurantsvc.MenuInput) (*domain.MenuItem, error)
	ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error)
}

type orderService interface {
	CreateCheckoutSession(ctx context.Context, userID string, in ordersvc.CheckoutRequest) (*payment.Session, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (ordersvc.WebhookResult, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

// Deps carries the services the router dispatches to.
type Deps struct {
	UserSvc       userService
	RestaurantSvc restaurantService
	OrderSvc      orderService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigin string) (*gin.Engine, error) {
	if deps.UserSvc == nil || deps.RestaurantSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: user, restaurant and order services are required")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if allowedOrigin != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{allowedOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{logger: logger, deps: deps}
	auth := authMiddleware(deps.UserSvc)
	api := router.Group("/api/v1")

	users := api.Group("/user")
	users.POST("/signup", h.signup)
	users.POST("/login", h.login)
	users.POST("/logout", h.logout)
	users.GET("/check-auth", auth, h.checkAuth)
	users.PUT("/profile/update", auth, h.updateProfile)

	restaurants := api.Group("/restaurant")
	restaurants.POST("", auth, h.saveRestaurant)
	restaurants.PUT("", auth, h.saveRestaurant)
	restaurants.GET("", auth, h.getOwnRestaurant)
	restaurants.GET("/order", auth, h.listRestaurantOrders)
	restaurants.GET("/search", h.searchRestaurants)
	restaurants.GET("/search/:searchText", h.searchRestaurants)
	restaurants.GET("/:id", h.getRestaurant)

	menus := api.Group("/menu", auth)
	menus.POST("", h.addMenu)
	menus.PUT("/:id", h.updateMenu)

	orders := api.Group("/order")
	orders.GET("", auth, h.listOrders)
	orders.POST("/checkout/create-checkout-session", auth, h.createCheckoutSession)
	orders.POST("/webhook", h.webhook)

	return router, nil
}

type handlers struct {
	logger *log.Logger
	deps   Deps
}
