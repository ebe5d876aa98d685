package dashboard

import (
	"context"
	"strconv"

	"blocc-dashboard/internal/alerting"
	"blocc-dashboard/internal/blocc"
	"blocc-dashboard/internal/poller"
)

func forkPollerName(containerNum int) string {
	return "fork-" + strconv.Itoa(containerNum)
}

// onForkChange queues an alert when a container enters FORKED. A failed poll
// in between does not count as leaving FORKED, since the failure keeps the
// last known status.
func (s *Service) onForkChange(containerNum int, prev, next poller.Result[blocc.ForkStatus]) {
	if s.notifier == nil {
		return
	}
	if next.State != poller.StateSuccess || next.Data != blocc.StatusForked {
		return
	}
	if prev.HasData && prev.Data == blocc.StatusForked {
		return
	}

	previous := blocc.StatusLoading
	if prev.HasData {
		previous = prev.Data
	}

	note := alerting.Notification{
		ContainerNum: containerNum,
		Previous:     previous,
		Current:      next.Data,
		ObservedAt:   next.UpdatedAt,
		DashboardURL: s.dashboardURL,
	}
	select {
	case s.alerts <- note:
	default:
		s.logger.Warn().Int("container", containerNum).Msg("fork alert dropped; queue full")
	}
}

func (s *Service) dispatchAlerts(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case note := <-s.alerts:
			if err := s.notifier.Notify(ctx, note); err != nil {
				s.logger.Error().Err(err).Int("container", note.ContainerNum).Msg("failed to dispatch fork alert")
			}
		}
	}
}
