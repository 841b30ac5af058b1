package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/MikeMC777/generador-datos/internal/config"
	"github.com/MikeMC777/generador-datos/internal/ops"
	"github.com/MikeMC777/generador-datos/internal/runner"
	"github.com/MikeMC777/generador-datos/internal/schema"
	"github.com/MikeMC777/generador-datos/internal/sequence"
	"github.com/MikeMC777/generador-datos/internal/sink"
	"github.com/MikeMC777/generador-datos/internal/stats"
	"github.com/MikeMC777/generador-datos/internal/synth"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("cannot open sink connection")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.WithError(err).Fatal("cannot reach warehouse")
	}
	log.Info("connected to warehouse")

	if err := schema.Ensure(ctx, pool); err != nil {
		log.WithError(err).Fatal("schema bootstrap failed")
	}

	// resolved once; after this, IDs are allocated purely in memory
	marks, err := sink.HighWaterMarks(ctx, pool)
	if err != nil {
		log.WithError(err).Fatal("cannot resume ID sequences")
	}

	runID := uuid.NewString()
	rep := stats.NewReporter(runID)

	go func() {
		if err := ops.NewRouter(rep).Run(cfg.OpsAddr); err != nil {
			log.WithError(err).Error("ops server stopped")
		}
	}()

	r := runner.New(
		cfg.BatchSize,
		cfg.Interval,
		sequence.New(marks),
		synth.New(time.Now().UnixNano()),
		sink.New(pool, cfg.ChunkSize),
		rep,
	)

	log.WithField("run_id", runID).Info("starting data generation (Ctrl+C to stop)")
	err = r.Run(ctx)
	rep.LogSummary()
	if err != nil {
		log.WithError(err).Fatal("generator stopped on fatal error")
	}
}
