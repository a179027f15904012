package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civdef/volunteer-portal/internal/config"
	"github.com/civdef/volunteer-portal/internal/handler"
	"github.com/civdef/volunteer-portal/internal/queue"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/router"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rc := config.LoadRedis()
	rdb := rc.Connect(ctx)
	if rdb == nil {
		a.log.Warn("redis unavailable, response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var pub queue.Publisher = queue.NopPublisher{}
	if a.cfg.RabbitURL != "" {
		pub = queue.NewAMQPPublisher(a.cfg.RabbitURL)
	} else {
		a.log.Info("RABBITMQ_URL not set, workflow events are dropped")
	}

	users := repository.NewUserRepo(db)
	volunteers := repository.NewVolunteerRepo(db)
	incidents := repository.NewIncidentRepo(db)
	items := repository.NewInventoryRepo(db)
	sessions := repository.NewTrainingRepo(db)
	assignments := repository.NewAssignmentRepo(db)
	refs := repository.NewReferenceRepo(db)

	b := handler.NewBase(a.log, pub)
	e := router.New(router.Handlers{
		Auth:        handler.NewAuthHandler(b, a.cfg, users, repository.NewTokenRepo(db)),
		Volunteers:  handler.NewVolunteerHandler(b, volunteers, refs),
		Incidents:   handler.NewIncidentHandler(b, incidents, volunteers, refs),
		Inventory:   handler.NewInventoryHandler(b, items, refs),
		Training:    handler.NewTrainingHandler(b, sessions),
		Assignments: handler.NewAssignmentHandler(b, assignments, volunteers, incidents, sessions),
		Dashboard:   handler.NewDashboardHandler(b, volunteers, incidents, items, assignments),
		Users:       handler.NewUserHandler(b, users, refs),
		Reference:   handler.NewReferenceHandler(b, refs),
		CMS:         handler.NewCMSHandler(b, repository.NewContentRepo(db)),
	}, router.Options{
		JWTSecret: a.cfg.JWTSecret,
		Redis:     rdb,
		Cache:     rc.Cache,
		RateLimit: rc.RateLimit,
		Log:       a.log,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("port", a.cfg.Port), zap.String("env", a.cfg.Env))
		if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
