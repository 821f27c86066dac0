package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-builder/enhance"
	"resume-builder/events"
	"resume-builder/handlers/api/resumes"
	"resume-builder/identity"
	"resume-builder/realtime"
	"resume-builder/session"
	"resume-builder/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resume API and realtime server",
	RunE:  runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	blobs, closeStore, err := stores.GetStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ids, err := identity.NewService(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return err
	}

	registry := session.NewRegistry(blobs, cfg.SaveDebounce)
	rt := realtime.New(ids, registry)
	registry.Observe(rt.Publish)

	if cfg.AMQPURL != "" {
		publisher, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		registry.Observe(publisher.Publish)
		logrus.WithField("exchange", cfg.AMQPExchange).Info("Publishing resume events")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: newRouter(ids, registry, rt),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", srv.Addr).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		rt.Close()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	registry.Close()
	return err
}

func newRouter(ids *identity.Service, registry *session.Registry, rt *realtime.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "you are all set")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(identity.Middleware(ids)).Mount("/resume", resumes.Routes(registry, enhance.Heuristic{}))
	})

	r.Handle("/socket.io/", rt.Handler())
	return r
}
