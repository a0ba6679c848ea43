package jar

import (
	"context"
	"errors"
	"strconv"
	"time"

	"jacksonjar/internal/domain"
)

// ReconcileReport summarizes one reconcile run.
type ReconcileReport struct {
	Scanned  int
	Recorded int
	Present  int
	Orphaned int
}

// Reconcile walks the platform charges created since the given time and
// records every Jackson that never made it into the donations table. Charges
// without jar metadata or pointing at unknown merchants count as orphaned.
// With dryRun set nothing is written.
func (s *Service) Reconcile(ctx context.Context, since time.Time, dryRun bool) (ReconcileReport, error) {
	var rep ReconcileReport

	charges, err := s.platform.ListCharges(ctx, since)
	if err != nil {
		return rep, err
	}

	for _, ch := range charges {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Scanned++

		raw, ok := ch.Metadata[domain.MetaMerchantID]
		if !ok {
			rep.Orphaned++
			continue
		}
		merchantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.log.Warn().Str("charge_id", ch.ID).Str("merchant_id", raw).Msg("charge has malformed merchant id")
			rep.Orphaned++
			continue
		}

		exists, err := s.donations.ExistsByChargeID(ctx, ch.ID)
		if err != nil {
			return rep, err
		}
		if exists {
			rep.Present++
			continue
		}

		if _, err := s.merchants.GetByID(ctx, merchantID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.log.Warn().Str("charge_id", ch.ID).Int64("merchant_id", merchantID).Msg("charge for unknown merchant")
				rep.Orphaned++
				continue
			}
			return rep, err
		}

		if dryRun {
			s.log.Info().Str("charge_id", ch.ID).Int64("merchant_id", merchantID).Msg("would record missing donation")
			rep.Recorded++
			continue
		}

		d := &domain.Donation{
			StripeChargeID: ch.ID,
			MerchantID:     merchantID,
			DonatorEmail:   ch.Metadata[domain.MetaDonatorEmail],
			Amount:         ch.Amount,
			Time:           ch.Created.UTC(),
		}
		inserted, err := s.record(ctx, d)
		if err != nil {
			return rep, err
		}
		if inserted {
			s.log.Info().Str("charge_id", ch.ID).Int64("merchant_id", merchantID).Msg("recorded missing donation")
			rep.Recorded++
		} else {
			rep.Present++
		}
	}
	return rep, nil
}
