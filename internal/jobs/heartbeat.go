package jobs

import (
	"context"
	"fmt"
)

const heartbeatMessage = "CRM is alive"

func (s *Service) heartbeat(ctx context.Context) error {
	healthy, err := s.health.IsHealthy(ctx)
	if err != nil {
		return fmt.Errorf("check db health: %w", err)
	}
	if !healthy {
		return fmt.Errorf("db is not healthy")
	}

	return s.heartbeatAudit.Append(fmt.Sprintf("%s %s", timestamp(s.now()), heartbeatMessage))
}
