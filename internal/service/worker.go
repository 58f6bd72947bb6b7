package service

import (
	"context"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

func (s *service) processBatches(ctx context.Context) error {
	if err := s.orchestrator.ProcessDue(ctx); err != nil {
		return errors.Wrap(err, "failed to process due batch")
	}
	return nil
}

func (s *service) refreshPrices(ctx context.Context) error {
	if err := s.prices.Refresh(ctx); err != nil {
		return errors.Wrap(err, "failed to refresh reference prices")
	}
	return nil
}
