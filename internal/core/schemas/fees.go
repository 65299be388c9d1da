package schemas

import (
	"context"
	"log/slog"

	"github.com/noor-ul-masajid/console/internal/core"
	"github.com/noor-ul-masajid/console/internal/roster"
)

// FeeUpdatesKey is the registry key of the fee update import.
const FeeUpdatesKey = "fee-updates"

func registerFeeUpdates(r *roster.Roster) {
	core.Register(core.SchemaDefinition{
		Info: core.SchemaInfo{
			Key:   FeeUpdatesKey,
			Group: "Admissions",
			Title: "Import Fee Updates",
			Columns: []core.TemplateColumn{
				{Header: "Admission ID", Key: "Admission ID"},
				{Header: "Fee Item", Key: "Fee Item"},
				{Header: "Paid", Key: "Paid", Kind: core.KindBoolean}, // Yes/No
				{Header: "Payment Date", Key: "Payment Date"},
				{Header: "Remarks", Key: "Remarks"},
			},
		},
		Bind: func(map[string]string) (core.AcceptFunc, error) {
			return acceptFeeUpdates(r), nil
		},
	})
}

// acceptFeeUpdates applies each row to the named fee item of an admission.
// Every applied row counts as an update; rows that match no admission or fee
// item are skipped.
func acceptFeeUpdates(r *roster.Roster) core.AcceptFunc {
	return func(ctx context.Context, records []core.Record) (int, error) {
		updated, skipped := 0, 0
		for _, rec := range records {
			id, ok := roster.ParseAdmissionID(rec["Admission ID"])
			if !ok {
				skipped++
				continue
			}

			err := r.UpdateFee(id, text(rec["Fee Item"]), roster.FeeUpdate{
				Paid:          truthy(rec["Paid"]),
				DateOfPayment: date(rec["Payment Date"]),
				Remarks:       text(rec["Remarks"]),
			})
			if err != nil {
				skipped++
				continue
			}
			updated++
		}

		if skipped > 0 {
			slog.InfoContext(ctx, "fee update rows skipped", "skipped", skipped)
		}
		return updated, nil
	}
}
