package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/stromwerk/loadshaper"
	"github.com/stromwerk/loadshaper/calendar"
	"github.com/stromwerk/loadshaper/server"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	region := flag.String("region", "BW", "default German federal state code")
	fetchTimeout := flag.Duration("fetch-timeout", calendar.DefaultFetchTimeout, "holiday API request timeout")
	disableFetch := flag.Bool("no-fetch", false, "skip holiday APIs and use the built-in calendar only")
	cpuProfile := flag.Bool("cpuprofile", false, "write a CPU profile to the working directory")
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	opt := &loadshaper.Options{
		Region:       calendar.Region(*region),
		FetchTimeout: *fetchTimeout,
		DisableFetch: *disableFetch,
	}
	if !opt.Region.Valid() {
		slog.Error("unknown federal state code", "region", *region)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.New(opt).Router(),
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("listening", "addr", *addr, "region", opt.Region)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
