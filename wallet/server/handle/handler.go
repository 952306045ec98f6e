package handle

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/btcsuite/btclog"
	"github.com/gin-gonic/gin"
	"github.com/inscription-c/custody/internal/log"
	"github.com/inscription-c/custody/internal/sentry"
	"github.com/inscription-c/custody/internal/signal"
	"github.com/inscription-c/custody/wallet"
)

type Options struct {
	addr          string
	keyName       string
	accounts      gin.Accounts
	enablePProf   bool
	enableMetrics bool
	engine        *gin.Engine
	service       *wallet.Service
	logger        btclog.Logger
}

type Option func(*Options)

func WithAddr(addr string) Option {
	return func(options *Options) {
		options.addr = addr
	}
}

// WithKeyName sets the only key name requests may ask for.
func WithKeyName(keyName string) Option {
	return func(options *Options) {
		options.keyName = keyName
	}
}

// WithAccounts sets the basic auth users. Each user is a tenant.
func WithAccounts(accounts map[string]string) Option {
	return func(options *Options) {
		options.accounts = accounts
	}
}

func WithEnablePProf(enable bool) Option {
	return func(options *Options) {
		options.enablePProf = enable
	}
}

func WithEnableMetrics(enable bool) Option {
	return func(options *Options) {
		options.enableMetrics = enable
	}
}

func WithEngine(g *gin.Engine) Option {
	return func(options *Options) {
		options.engine = g
	}
}

func WithService(s *wallet.Service) Option {
	return func(options *Options) {
		options.service = s
	}
}

func WithLogger(logger btclog.Logger) Option {
	return func(options *Options) {
		options.logger = logger
	}
}

type Handler struct {
	options *Options
}

func New(opts ...Option) (*Handler, error) {
	h := &Handler{}
	h.options = &Options{
		logger: log.Srv,
	}
	for _, opt := range opts {
		opt(h.options)
	}
	if h.options.service == nil {
		return nil, fmt.Errorf("key service is nil")
	}
	if h.options.keyName == "" {
		return nil, fmt.Errorf("key name is empty")
	}
	if len(h.options.accounts) == 0 {
		return nil, fmt.Errorf("no accounts configured")
	}
	if h.options.engine == nil {
		h.options.engine = gin.New()
	}
	h.InitRouter()
	return h, nil
}

func (h *Handler) Engine() *gin.Engine {
	return h.options.engine
}

func (h *Handler) Service() *wallet.Service {
	return h.options.service
}

// Run serves the api until an interrupt.
func (h *Handler) Run() error {
	srv := &http.Server{
		Addr:    h.options.addr,
		Handler: h.options.engine,
	}
	signal.AddInterruptHandler(func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			h.options.logger.Errorf("srv.Shutdown: %v", err)
		}
	})
	go func() {
		defer sentry.RecoverPanic()
		h.options.logger.Infof("key server listening on %s", h.options.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.options.logger.Errorf("srv.ListenAndServe: %v", err)
			signal.SimulateInterrupt()
		}
	}()
	return nil
}
