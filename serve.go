package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"scenario-visualizer/internal/log"
	"scenario-visualizer/internal/playback"
)

func runServe(ctx context.Context, opts *ServeOptions) error {
	src, sourceName := opts.source()
	hub := newHub()
	b := newBoard(hub, opts.GridOverlay, colorFunc(opts.ColorMode))
	ctrl := playback.NewController(src, b, playback.Options{
		ScenarioID:          opts.ScenarioID,
		AutoCompleteEnabled: opts.AutoComplete,
		SourceName:          sourceName,
	}, playback.WithLogger(log.WithName("playback")))
	defer ctrl.Close()

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           newServer(ctrl, b, hub).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Board server starting", "addr", opts.Addr, "source", sourceName, "autoComplete", opts.AutoComplete)
		return listenAndServe(srv)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, opts.ShutdownTimeout)
	})
	g.Go(func() error {
		newRefresher(ctrl, opts.RefreshInterval, opts.FetchTimeout).run(gctx)
		return nil
	})
	return g.Wait()
}

func listenAndServe(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server on %s: %w", srv.Addr, err)
	}
	return nil
}

func shutdown(srv *http.Server, timeout time.Duration) error {
	log.Info("Shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "HTTP server shutdown error")
		return err
	}
	log.Info("HTTP server shut down successfully")
	return nil
}
