package jobs

import (
	"context"
	"fmt"
)

func (s *Service) restock(ctx context.Context) error {
	result, err := s.productSvc.UpdateLowStockProducts(ctx)
	if err != nil {
		return fmt.Errorf("update low stock products: %w", err)
	}

	ts := timestamp(s.now())
	lines := make([]string, 0, len(result.Products)+1)
	for _, product := range result.Products {
		lines = append(lines, fmt.Sprintf("%s - %s restocked to %d", ts, product.Name, product.Stock))
	}
	lines = append(lines, fmt.Sprintf("%s - %s", ts, result.Message))

	return s.restockAudit.Append(lines...)
}
