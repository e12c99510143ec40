package httpserver

import (
	"net/http"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	// Longer than the router's 30s request timeout so its 504 reaches the client.
	writeTimeout = 35 * time.Second
	idleTimeout  = 2 * time.Minute
)

func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
