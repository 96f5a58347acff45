package legacy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"gofulfil/internal/domain"
	"gofulfil/internal/pkg/logger"
)

// Gateway notifies the legacy store manager about store mutations.
//
// Callers must only invoke it from a post-commit hook: the legacy system may
// never learn about a store that was rolled back. Notification failures are
// logged and swallowed; they cannot affect the already committed transaction.
type Gateway struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewGateway creates a gateway pointed at the legacy store manager base URL.
func NewGateway(baseURL string, log logger.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  log,
	}
}

// StoreCreated tells the legacy system a store now exists.
func (g *Gateway) StoreCreated(store domain.Store) {
	g.notify(http.MethodPost, "/legacy/stores", store)
}

// StoreUpdated tells the legacy system a store changed.
func (g *Gateway) StoreUpdated(store domain.Store) {
	g.notify(http.MethodPut, "/legacy/stores/"+store.ID, store)
}

func (g *Gateway) notify(method, path string, store domain.Store) {
	body, err := json.Marshal(store)
	if err != nil {
		g.logger.Error("Failed to encode legacy notification payload.", err)
		return
	}

	req, err := http.NewRequest(method, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		g.logger.Error("Failed to build legacy notification request.", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("Legacy store manager unreachable.", map[string]interface{}{
			"store_id": store.ID,
			"error":    err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		g.logger.Warn("Legacy store manager rejected notification.", map[string]interface{}{
			"store_id": store.ID,
			"status":   resp.StatusCode,
		})
		return
	}

	g.logger.Info("Legacy store manager notified.", map[string]interface{}{
		"store_id": store.ID,
		"method":   method,
	})
}
