package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/bundler"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/consumer"
	"github.com/dmitrymomot/notifykit/pkg/directory"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/markdown"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/pkg/scheduler"
	"github.com/dmitrymomot/notifykit/pkg/settings"
)

// bundledEventType tags scheduled events in storage; one daemon owns one
// event type.
const bundledEventType = "notifications.bundle"

type appConfig struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"notifyd"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	GroupsFile      string        `env:"BUNDLE_GROUPS_FILE"` // Optional YAML override of the built-in group table
	EmailTransport  string        `env:"EMAIL_TRANSPORT" envDefault:"bus"`
	DevEmailDir     string        `env:"DEV_EMAIL_DIR" envDefault:"./tmp/emails"`
	SchedulerPrefix string        `env:"SCHEDULER_KEY_PREFIX" envDefault:"notifykit:scheduler"`
	CheckInterval   time.Duration `env:"SCHEDULER_CHECK_INTERVAL" envDefault:"1m"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app appConfig
	config.MustLoad(&app)

	log := logger.New(logger.WithEnvironment(app.Environment, app.ServiceName))
	logger.SetAsDefault(log)

	groups, err := loadGroups(app.GroupsFile)
	if err != nil {
		fatal(log, "failed to load bundle groups", err)
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	defer redisClient.Close()

	var settingsCfg settings.Config
	config.MustLoad(&settingsCfg)
	settingsClient, err := settings.NewClient(settingsCfg)
	if err != nil {
		fatal(log, "failed to create settings client", err)
	}

	var directoryCfg directory.Config
	config.MustLoad(&directoryCfg)
	directoryClient, err := directory.NewClient(directoryCfg)
	if err != nil {
		fatal(log, "failed to create directory client", err)
	}

	dispatcher, err := newDispatcher(app)
	if err != nil {
		fatal(log, "failed to create dispatcher", err)
	}

	periods := map[string]time.Duration{
		"hourly": time.Hour,
		"daily":  24 * time.Hour,
		"weekly": 7 * 24 * time.Hour,
	}

	// The scheduler's due callback needs the engine, and the engine needs
	// the scheduler; the closure breaks the cycle.
	var engine *bundler.Engine
	onDue := func(ctx context.Context, events []scheduler.Event, setStatus scheduler.SetStatusFunc) {
		engine.ProcessDue(ctx, events, setStatus)
	}

	sched, err := scheduler.New(bundledEventType, periods, onDue,
		scheduler.NewRedisStorage(redisClient, app.SchedulerPrefix),
		scheduler.WithCheckInterval(app.CheckInterval),
		scheduler.WithLogger(log),
	)
	if err != nil {
		fatal(log, "failed to create scheduler", err)
	}

	var engineCfg bundler.Config
	config.MustLoad(&engineCfg)
	engine, err = bundler.New(engineCfg, groups, settingsClient, directoryClient, dispatcher, sched,
		bundler.WithLogger(log),
		bundler.WithMarkdown(markdown.New()),
	)
	if err != nil {
		fatal(log, "failed to create bundling engine", err)
	}

	var consumerCfg consumer.Config
	config.MustLoad(&consumerCfg)
	cons, err := consumer.New(consumerCfg, log)
	if err != nil {
		fatal(log, "failed to create consumer", err)
	}
	defer cons.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("scheduler stopped", logger.Error(err))
		}
	}()

	log.Info("notifyd started",
		slog.String("environment", app.Environment),
		slog.String("email_transport", app.EmailTransport))

	if err := cons.Run(ctx, engine.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", logger.Error(err))
	}

	stop()
	wg.Wait()
	log.Info("shutdown complete")
}

func loadGroups(path string) (*bundler.GroupTable, error) {
	if path != "" {
		return bundler.LoadGroups(path)
	}
	return bundler.NewGroupTable(bundler.DefaultGroups())
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, logger.Error(err))
	os.Exit(1)
}
