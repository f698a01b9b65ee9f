package api

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/x-tabstack/internal/build"
	"github.com/ItsNotGoodName/x-tabstack/pkg/chiext"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API on a chi router. Files in static, when given, are
// served from the root.
func NewRouter(handler Handler, static fs.FS) (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)
	if static != nil {
		mw, err := chiext.StaticFS(static)
		if err != nil {
			return nil, err
		}
		r.Use(mw)
	}

	api := humachi.New(r, huma.DefaultConfig("x-tabstack", build.Current.Version))
	handler.Register(api)

	return r, nil
}

type Server struct {
	addr    string
	handler http.Handler
}

func NewServer(addr string, handler http.Handler) Server {
	return Server{
		addr:    addr,
		handler: handler,
	}
}

func (s Server) String() string {
	return "api.Server"
}

func (s Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.handler}

	errC := make(chan error, 1)
	go func() { errC <- srv.ListenAndServe() }()
	slog.Info("Listening", "address", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
