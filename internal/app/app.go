// Package app wires the bot together: configuration, logging, the store,
// the Discord surface, and the periodic jobs.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"crobot/internal/config"
	"crobot/internal/discord"
	"crobot/internal/guildcfg"
	"crobot/internal/livestatus"
	"crobot/internal/memeapi"
	"crobot/internal/memes"
	"crobot/internal/runtime/supervisor"
	"crobot/internal/scheduler"
	"crobot/internal/sessions"
	"crobot/internal/store"
	"crobot/internal/twitch"
	logx "crobot/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	st       *store.Store
	bot      *discord.Bot
	sched    *scheduler.Service
	tracker  *livestatus.Tracker
	twitchC  *twitch.Client
	memeSch  *memes.Scheduler
	registry *sessions.Registry

	cfgUpdates chan *config.Config
	statusStep int
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	busyTimeout, err := cfg.Storage.BusyWait()
	if err != nil {
		logs.Close()
		return nil, err
	}
	st, err := store.Open(store.Config{
		Driver:      cfg.Storage.Driver,
		Dir:         cfg.Storage.Dir,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "store")))
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	defaults, err := fallbackDefaults(cfg.Fallback)
	if err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		token = cfg.Discord.Token
	}
	if token == "" {
		st.Close()
		logs.Close()
		return nil, fmt.Errorf("discord token missing: set DISCORD_TOKEN or discord.token")
	}

	registry := sessions.NewRegistry(sessions.DefaultTTL)

	bot, err := discord.New(discord.Config{
		Token:          token,
		PrimaryGuildID: cfg.Discord.PrimaryGuildID,
		SendRatePerSec: cfg.Discord.SendRatePerSec,
	}, st, defaults, registry, log.With(logx.String("comp", "discord")))
	if err != nil {
		st.Close()
		logs.Close()
		return nil, fmt.Errorf("discord: %w", err)
	}

	twTimeout, err := cfg.Twitch.CallTimeout()
	if err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}
	twClientID := os.Getenv("TWITCH_CLIENT_ID")
	if twClientID == "" {
		twClientID = cfg.Twitch.ClientID
	}
	twSecret := os.Getenv("TWITCH_CLIENT_SECRET")
	if twSecret == "" {
		twSecret = cfg.Twitch.ClientSecret
	}
	twitchC := twitch.New(twitch.Config{
		ClientID:     twClientID,
		ClientSecret: twSecret,
		Timeout:      twTimeout,
	}, log.With(logx.String("comp", "twitch")))
	tracker := livestatus.New(twitchC, log.With(logx.String("comp", "livestatus")))

	apiTimeout, err := cfg.MemeAPI.CallTimeout()
	if err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}
	fetcher := memeapi.New(memeapi.Config{URL: cfg.MemeAPI.URL, Timeout: apiTimeout})
	memeSch := memes.NewScheduler(st, defaults, fetcher, bot, log.With(logx.String("comp", "memes")))

	a := &App{
		cfgm:     cfgm,
		log:      log,
		logs:     logs,
		st:       st,
		bot:      bot,
		sched:    scheduler.New(scheduler.Config{}, log.With(logx.String("comp", "scheduler"))),
		tracker:  tracker,
		twitchC:  twitchC,
		memeSch:  memeSch,
		registry: registry,
	}
	if err := a.registerJobs(cfg); err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}
	return a, nil
}

func fallbackDefaults(fc config.FallbackConfig) (guildcfg.Defaults, error) {
	interval, err := fc.Interval(guildcfg.DefaultMemeInterval)
	if err != nil {
		return guildcfg.Defaults{}, err
	}
	return guildcfg.Defaults{
		WelcomeChannelID: fc.WelcomeChannelID,
		MemeChannelID:    fc.MemeChannelID,
		TwitchChannelID:  fc.TwitchChannelID,
		AutoRoleID:       fc.AutoRoleID,
		MemeInterval:     interval,
	}, nil
}

func (a *App) registerJobs(cfg *config.Config) error {
	cad, err := cfg.Jobs.Resolve(config.DefaultJobs())
	if err != nil {
		return err
	}
	every := func(d time.Duration) string { return "@every " + d.String() }

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"twitch.scan", every(cad.TwitchPoll), a.jobTwitchScan},
		{"memes.tick", every(cad.MemeTick), a.jobMemeTick},
		{"store.autosave", every(cad.Autosave), a.jobAutosave},
		{"heartbeat", every(cad.Heartbeat), a.jobHeartbeat},
		{"sessions.sweep", every(cad.SessionSweep), a.jobSessionSweep},
		{"birthdays.announce", cad.BirthdayCron, a.jobBirthdays},
		{"status.rotate", cad.StatusCron, a.jobStatusRotate},
	}
	for _, j := range jobs {
		if err := a.sched.Add(j.name, j.spec, j.run); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))

	if err := a.bot.Start(a.sup.Context()); err != nil {
		return fmt.Errorf("discord start: %w", err)
	}
	a.sched.Start(a.sup.Context())

	a.cfgUpdates = a.cfgm.Subscribe(1)
	a.sup.Go("config.watch", a.cfgm.Watch)
	a.sup.Go0("config.apply", a.applyConfigUpdates)

	a.log.Info("crobot is up",
		logx.Int("jobs", len(a.sched.Jobs())),
		logx.Bool("twitch_enabled", a.twitchC.Enabled()))
	return nil
}

// applyConfigUpdates handles hot reloads. Only logging settings take effect
// live; everything else needs a restart and is logged as such.
func (a *App) applyConfigUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-a.cfgUpdates:
			if !ok {
				return
			}
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			a.log.Info("config reloaded; logging settings applied, other changes need a restart")
		}
	}
}

func (a *App) Stop(ctx context.Context) {
	a.sched.Stop(ctx)
	if err := a.bot.Stop(ctx); err != nil {
		a.log.Warn("discord shutdown", logx.Err(err))
	}
	if a.sup != nil {
		a.sup.Cancel()
		if err := a.sup.Wait(ctx); err != nil {
			a.log.Warn("supervisor drain", logx.Err(err))
		}
	}
	if a.cfgUpdates != nil {
		a.cfgm.Unsubscribe(a.cfgUpdates)
	}
	if err := a.st.Close(); err != nil {
		a.log.Error("final flush failed", logx.Err(err))
	}
	a.log.Info("crobot stopped")
	a.logs.Close()
}
