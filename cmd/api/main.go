package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	catalogpg "storefront/pkg/catalog/postgres"
	"storefront/pkg/checkout"
	"storefront/pkg/config"
	"storefront/pkg/logger"
	"storefront/pkg/otel"
	"storefront/pkg/session"
	sessionredis "storefront/pkg/session/redis"
)

var (
	cfg         *config.Config
	log         *logger.Logger
	tracer      trace.Tracer
	redisClient *redis.Client
	repo        catalog.Repository
	carts       session.Store
	engine      *cart.Engine
	checkouts   *checkout.Service
)

// @title Storefront API
// @version 1.0
// @description Item catalog, session cart, and checkout
// @host localhost:8443
// @BasePath /
func main() {
	cfg = config.Load()
	log = logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), cfg.ServiceName, otel.GetTraceID)
	defer log.Sync()

	tp, shutdown, err := otel.InitTracing(log, otel.Config{ServiceName: cfg.ServiceName, Host: cfg.OTELHost, Probability: 1.0})
	if err != nil {
		log.Error(context.Background(), "init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())
	tracer = tp.Tracer(cfg.ServiceName)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error(context.Background(), "db connect", "error", err)
		os.Exit(1)
	}
	pgRepo := catalogpg.New(db)
	if err := pgRepo.EnsureSchema(context.Background()); err != nil {
		log.Error(context.Background(), "ensure schema", "error", err)
		os.Exit(1)
	}
	repo = pgRepo

	redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	carts = sessionredis.New(redisClient, cfg.SessionTTL)

	engine = cart.NewEngine(catalogAdapter{repo: repo}, log)
	checkouts = checkout.NewService(engine, carts, checkout.NewStubGateway(log), log)

	r := newRouter()

	log.Info(context.Background(), "listening", "addr", cfg.Addr)
	if err := http.ListenAndServeTLS(cfg.Addr, cfg.TLSCert, cfg.TLSKey, r); err != nil {
		log.Error(context.Background(), "server closed", "error", err)
	}
}

// newRouter builds the route table. Kept apart from main so handler tests
// can mount the exact production routes over in-memory dependencies.
func newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(traceMiddleware)

	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)

	r.HandleFunc("/items", listItemsHandler).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}", getItemHandler).Methods(http.MethodGet)
	r.HandleFunc("/categories", listCategoriesHandler).Methods(http.MethodGet)

	c := r.PathPrefix("/cart").Subrouter()
	c.Use(cartSessionMiddleware)
	c.HandleFunc("", viewCartHandler).Methods(http.MethodGet)
	c.HandleFunc("/add", addToCartHandler).Methods(http.MethodPost)
	c.HandleFunc("/remove/{id}", removeFromCartHandler).Methods(http.MethodPost)

	p := r.PathPrefix("/pay").Subrouter()
	p.Use(cartSessionMiddleware)
	p.HandleFunc("/checkout", payCheckoutHandler).Methods(http.MethodPost)
	p.HandleFunc("/success", paySuccessHandler).Methods(http.MethodGet)
	p.HandleFunc("/cancel", payCancelHandler).Methods(http.MethodGet)

	a := r.PathPrefix("/admin").Subrouter()
	a.Use(authMiddleware)
	a.HandleFunc("/items", createItemHandler).Methods(http.MethodPost)
	a.HandleFunc("/items/{id}", updateItemHandler).Methods(http.MethodPut)
	a.HandleFunc("/items/{id}", deleteItemHandler).Methods(http.MethodDelete)
	a.HandleFunc("/categories", createCategoryHandler).Methods(http.MethodPost)
	a.HandleFunc("/categories/{id}", deleteCategoryHandler).Methods(http.MethodDelete)
	a.HandleFunc("/tags", listTagsHandler).Methods(http.MethodGet)
	a.HandleFunc("/tags", createTagHandler).Methods(http.MethodPost)
	a.HandleFunc("/tags/{id}", deleteTagHandler).Methods(http.MethodDelete)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginHandler handles user login and session creation.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}
	sid := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := redisClient.Set(ctx, "session:"+sid, req.Username, cfg.SessionTTL).Err(); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(cfg.SessionTTL), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// authMiddleware ensures a valid login session exists.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := redisClient.Get(r.Context(), "session:"+c.Value).Result()
		if err != nil || user == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), "user", user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cartSessionMiddleware scopes the request to a cart session, minting a
// new cookie on first touch so carts need no explicit creation step.
func cartSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie("cart_session"); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{Name: "cart_session", Value: sid, Path: "/", Expires: time.Now().Add(cfg.SessionTTL), HttpOnly: true})
		}
		ctx := context.WithValue(r.Context(), "cart_session", sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cartSessionID extracts the cart session id set by cartSessionMiddleware.
func cartSessionID(r *http.Request) string {
	sid, _ := r.Context().Value("cart_session").(string)
	return sid
}
