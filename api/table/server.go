package table

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ListenAndServe serves h on addr until ctx is canceled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, readTimeout time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: readTimeout, ReadTimeout: readTimeout}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
