package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SvenDH/go-card-client/logging"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
	if err != nil {
		logging.Log.WithError(err).Warn("encode error response")
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

type Logger struct {
	handler http.Handler
	logger  *logrus.Entry
}

func (l *Logger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	l.handler.ServeHTTP(sw, r)
	l.logger.WithFields(logrus.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"status":   sw.status,
		"duration": time.Since(start),
	}).Info("request")
}

type Router struct {
	addr string
	mux  http.Handler
}

func NewRouter(addr string, server *Server) *Router {
	mux := http.NewServeMux()
	ws := AuthMiddleware(server.opts.TokenSecret, server.ServeWs)
	mux.HandleFunc("GET /socket/{user}/{game}", ws)
	mux.HandleFunc("GET /socket/{user}/{game}/{password}", ws)

	return &Router{
		addr: addr,
		mux:  &Logger{mux, logging.Log.WithField("component", "http")},
	}
}

func (r *Router) Handler() http.Handler { return r.mux }

// Run serves until ctx is cancelled.
func (r *Router) Run(ctx context.Context) error {
	srv := &http.Server{Addr: r.addr, Handler: r.mux}
	errc := make(chan error, 1)
	go func() {
		logging.Log.Infof("replay server started on %s", r.addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
