package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallbackServer is a short-lived localhost HTTP listener that receives
// the OAuth2 redirect carrying token and user query parameters, the CLI
// equivalent of the browser reading them off its own URL. Parameters are
// consumed by the session store and never echoed back, so the "URL" is
// stripped of credentials the same way the browser history is.
type CallbackServer struct {
	addr   string
	store  *Store
	logger *zap.Logger

	mu        sync.Mutex
	isRunning bool
	srv       *http.Server
	done      chan struct{}
}

// NewCallbackServer creates a callback listener bound to addr
// (e.g. 127.0.0.1:8910).
func NewCallbackServer(addr string, store *Store, logger *zap.Logger) *CallbackServer {
	return &CallbackServer{
		addr:   addr,
		store:  store,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins listening for the OAuth callback.
func (c *CallbackServer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return fmt.Errorf("callback server is already running")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/oauth/callback", c.handleCallback)

	c.srv = &http.Server{Addr: c.addr, Handler: engine}
	c.isRunning = true

	go func() {
		c.logger.Info("OAuth callback listener started", zap.String("addr", c.addr))
		if err := c.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("Callback listener failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the listener down.
func (c *CallbackServer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return
	}
	c.isRunning = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.srv.Shutdown(ctx); err != nil {
		c.logger.Warn("Callback listener shutdown error", zap.Error(err))
	}
	c.logger.Info("OAuth callback listener stopped")
}

// Name returns the worker name for identification.
func (c *CallbackServer) Name() string {
	return "OAuthCallbackServer"
}

// Done is closed once a callback has been ingested.
func (c *CallbackServer) Done() <-chan struct{} {
	return c.done
}

func (c *CallbackServer) handleCallback(g *gin.Context) {
	if !c.store.IngestCallback(g.Request.URL.Query()) {
		g.String(http.StatusBadRequest, "missing token or user parameter")
		return
	}

	g.String(http.StatusOK, "Signed in. You can close this window.")

	c.mu.Lock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.mu.Unlock()
}
