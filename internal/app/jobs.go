package app

import (
	"context"
	"time"

	"crobot/internal/birthdays"
	logx "crobot/pkg/logx"
)

// jobTwitchScan polls the Helix API for every linked handle and announces
// offline-to-live transitions. A no-op when no credentials are configured.
func (a *App) jobTwitchScan(ctx context.Context) error {
	if !a.twitchC.Enabled() {
		return nil
	}
	links := a.st.Links()
	if len(links) == 0 {
		return nil
	}
	handles := make([]string, 0, len(links))
	for _, h := range links {
		handles = append(handles, h)
	}
	wentLive := a.tracker.Scan(ctx, handles)
	if len(wentLive) > 0 {
		a.bot.AnnounceLive(wentLive)
	}
	return nil
}

func (a *App) jobMemeTick(ctx context.Context) error {
	a.memeSch.Tick(ctx, a.bot.GuildIDs())
	return nil
}

func (a *App) jobAutosave(ctx context.Context) error {
	a.st.Flush()
	return nil
}

func (a *App) jobHeartbeat(ctx context.Context) error {
	fields := []logx.Field{
		logx.Int("guilds", len(a.bot.GuildIDs())),
		logx.Int("open_sessions", a.registry.Len()),
	}
	for _, j := range a.sched.Jobs() {
		if !j.Next.IsZero() {
			fields = append(fields, logx.Time("next_"+j.Name, j.Next))
		}
	}
	a.log.Info("heartbeat", fields...)
	return nil
}

func (a *App) jobSessionSweep(ctx context.Context) error {
	a.bot.SweepSessions(time.Now())
	return nil
}

func (a *App) jobBirthdays(ctx context.Context) error {
	due := birthdays.Due(a.st.Birthdays(), time.Now())
	if len(due) > 0 {
		a.bot.AnnounceBirthdays(due)
	}
	return nil
}

func (a *App) jobStatusRotate(ctx context.Context) error {
	a.bot.RotateStatus(a.statusStep)
	a.statusStep++
	return nil
}
