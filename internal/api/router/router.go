package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gofulfil/internal/api/fulfillment"
	"gofulfil/internal/api/operator"
	"gofulfil/internal/api/product"
	"gofulfil/internal/api/store"
	"gofulfil/internal/api/warehouse"
)

// Middleware wraps a handler, e.g. for rate limiting.
type Middleware func(http.Handler) http.Handler

// AuthMiddleware wraps a handler func with credential checks.
type AuthMiddleware func(next http.HandlerFunc) http.HandlerFunc

// NewRouter configures and returns the main HTTP router.
// It receives the already-initialized handlers by dependency injection.
func NewRouter(
	warehouseHandler *warehouse.Handler,
	fulfillmentHandler *fulfillment.Handler,
	productHandler *product.Handler,
	storeHandler *store.Handler,
	operatorHandler *operator.Handler,
	auth AuthMiddleware,
	rateLimit Middleware,
) http.Handler {

	// The standard net/http ServeMux is enough for this route surface.
	mux := http.NewServeMux()

	// --- Health check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- Warehouses (v1) ---
	mux.HandleFunc("/v1/warehouses", guardMutations(auth, warehouseHandler.CollectionHandler))
	mux.HandleFunc("/v1/warehouses/", guardMutations(auth, warehouseHandler.ItemHandler))

	// --- Fulfillment associations (v1) ---
	// Stats routes are registered before the collection prefix so the more
	// specific pattern wins.
	mux.HandleFunc("/v1/fulfillments/stats/", fulfillmentHandler.StatsHandler)
	mux.HandleFunc("/v1/fulfillments", guardMutations(auth, fulfillmentHandler.CollectionHandler))

	// --- Products (v1) ---
	mux.HandleFunc("/v1/products", guardMutations(auth, productHandler.CollectionHandler))
	mux.HandleFunc("/v1/products/", guardMutations(auth, productHandler.ItemHandler))

	// --- Stores (v1) ---
	mux.HandleFunc("/v1/stores", guardMutations(auth, storeHandler.CollectionHandler))
	mux.HandleFunc("/v1/stores/", guardMutations(auth, storeHandler.ItemHandler))

	// --- Operator accounts (v1) ---
	// Register and login stay open, everything mutating elsewhere needs the token.
	mux.HandleFunc("/v1/operators/register", operatorHandler.RegisterHandler)
	mux.HandleFunc("/v1/operators/login", operatorHandler.LoginHandler)

	// --- API documentation ---
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return rateLimit(mux)
}

// guardMutations applies the auth middleware to every method except GET.
// Reads stay open, writes need a valid operator token.
func guardMutations(auth AuthMiddleware, next http.HandlerFunc) http.HandlerFunc {
	protected := auth(next)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next(w, r)
			return
		}
		protected(w, r)
	}
}

// PingHandler is the health check endpoint.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
