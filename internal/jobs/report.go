package jobs

import (
	"context"
	"fmt"
)

func (s *Service) report(ctx context.Context) error {
	report, err := s.reportSvc.GenerateReport(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	line := fmt.Sprintf("%s - Report: %d customers, %d orders, %.2f revenue",
		timestamp(s.now()),
		report.TotalCustomers,
		report.TotalOrders,
		report.TotalRevenue,
	)

	return s.reportAudit.Append(line)
}
