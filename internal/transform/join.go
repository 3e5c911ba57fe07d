package transform

import "rxclaims/internal/schema"

// Join builds staging rows: claims inner-joined to the pharmacy directory on
// npi, then left-joined to reverts on claim id.
//
// When the directory repeats an npi the first pharmacy wins. A claim matched
// by several reverts yields one row per revert, in revert order. The revert
// timestamp is not carried over. UnitPrice is Price/Quantity with no guard, so
// a zero quantity produces an infinite or NaN unit price.
func Join(claims []schema.Claim, pharmacies []schema.Pharmacy, reverts []schema.Revert) []schema.StagingRow {
	chains := make(map[string]string, len(pharmacies))
	for _, p := range pharmacies {
		if _, ok := chains[p.NPI]; !ok {
			chains[p.NPI] = p.Chain
		}
	}

	byClaim := make(map[string][]string, len(reverts))
	for _, r := range reverts {
		byClaim[r.ClaimID] = append(byClaim[r.ClaimID], r.ID)
	}

	out := make([]schema.StagingRow, 0, len(claims))
	for _, c := range claims {
		chain, ok := chains[c.NPI]
		if !ok {
			continue
		}
		row := schema.StagingRow{
			Claim:     c,
			Chain:     chain,
			UnitPrice: c.Price / c.Quantity,
		}
		ids := byClaim[c.ID]
		if len(ids) == 0 {
			out = append(out, row)
			continue
		}
		for _, id := range ids {
			r := row
			r.RevertID = &id
			out = append(out, r)
		}
	}
	return out
}
