package app

import (
	"context"
	"errors"
	"time"

	"blocc-dashboard/internal/alerting"
	"blocc-dashboard/internal/blocc"
)

// SimulateFork 通过已配置的告警通道发送一次模拟的分叉告警。
func (a *App) SimulateFork(ctx context.Context, containerNum int) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	note := alerting.Notification{
		ContainerNum:  containerNum,
		Previous:      blocc.StatusNormal,
		Current:       blocc.StatusForked,
		ObservedAt:    time.Now().UTC(),
		DashboardURL:  a.Config.Server.PublicURL,
		AdditionalMsg: "simulated alert, the ledger was not queried",
	}

	a.Logger.Info().Int("container", containerNum).Msg("sending simulated fork alert")
	return notifier.Notify(ctx, note)
}
