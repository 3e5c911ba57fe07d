package schema

import (
	"fmt"
	"time"

	"rxclaims/pkg/records"
)

// Claim is a single prescription fill event.
type Claim struct {
	ID        string    `json:"id" parquet:"id"`
	NDC       string    `json:"ndc" parquet:"ndc"`
	NPI       string    `json:"npi" parquet:"npi"`
	Quantity  float64   `json:"quantity" parquet:"quantity"`
	Price     float64   `json:"price" parquet:"price"`
	Timestamp time.Time `json:"timestamp" parquet:"timestamp"`
}

// Pharmacy maps a pharmacy npi to its chain.
type Pharmacy struct {
	Chain string `json:"chain"`
	NPI   string `json:"npi"`
}

// Revert reverses a previously filled claim.
type Revert struct {
	ID        string    `json:"id"`
	ClaimID   string    `json:"claim_id"`
	Timestamp time.Time `json:"timestamp"`
}

// StagingRow is a claim enriched with its chain and, when reverted, the id of
// the matching revert.
type StagingRow struct {
	Claim
	Chain     string
	RevertID  *string
	UnitPrice float64
}

// MetricsRow aggregates staging rows per (ndc, npi, chain). Chain is used for
// ranking and is not part of the serialized metrics result.
type MetricsRow struct {
	NDC        string  `json:"ndc"`
	NPI        string  `json:"npi"`
	Chain      string  `json:"-"`
	Reverted   uint32  `json:"reverted"`
	Fills      uint32  `json:"fills"`
	AvgPrice   float64 `json:"avg_price"`
	TotalPrice float64 `json:"total_price"`
}

// ChainPrice is one entry of a TopChainsRow.
type ChainPrice struct {
	Name     string  `json:"name"`
	AvgPrice float64 `json:"avg_price"`
}

// TopChainsRow lists the cheapest chains for a drug, ordered by name.
type TopChainsRow struct {
	NDC   string       `json:"ndc"`
	Chain []ChainPrice `json:"chain"`
}

// QuantityRow lists the most prescribed quantities for a drug, ascending.
type QuantityRow struct {
	NDC                    string    `json:"ndc"`
	MostPrescribedQuantity []float64 `json:"most_prescribed_quantity"`
}

// ClaimFromRecord converts a coerced claims record into a Claim.
func ClaimFromRecord(r records.Record) (Claim, error) {
	var (
		c   Claim
		err error
	)
	if c.ID, err = str(r, "id"); err != nil {
		return c, err
	}
	if c.NDC, err = str(r, "ndc"); err != nil {
		return c, err
	}
	if c.NPI, err = str(r, "npi"); err != nil {
		return c, err
	}
	if c.Quantity, err = num(r, "quantity"); err != nil {
		return c, err
	}
	if c.Price, err = num(r, "price"); err != nil {
		return c, err
	}
	c.Timestamp, err = ts(r, "timestamp")
	return c, err
}

// PharmacyFromRecord converts a coerced pharmacies record into a Pharmacy.
func PharmacyFromRecord(r records.Record) (Pharmacy, error) {
	var (
		p   Pharmacy
		err error
	)
	if p.Chain, err = str(r, "chain"); err != nil {
		return p, err
	}
	p.NPI, err = str(r, "npi")
	return p, err
}

// RevertFromRecord converts a coerced reverts record into a Revert.
func RevertFromRecord(r records.Record) (Revert, error) {
	var (
		rv  Revert
		err error
	)
	if rv.ID, err = str(r, "id"); err != nil {
		return rv, err
	}
	if rv.ClaimID, err = str(r, "claim_id"); err != nil {
		return rv, err
	}
	rv.Timestamp, err = ts(r, "timestamp")
	return rv, err
}

func str(r records.Record, k string) (string, error) {
	s, ok := r[k].(string)
	if !ok {
		return "", fmt.Errorf("field %s: want string, got %T", k, r[k])
	}
	return s, nil
}

func num(r records.Record, k string) (float64, error) {
	f, ok := r[k].(float64)
	if !ok {
		return 0, fmt.Errorf("field %s: want float64, got %T", k, r[k])
	}
	return f, nil
}

func ts(r records.Record, k string) (time.Time, error) {
	t, ok := r[k].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("field %s: want time.Time, got %T", k, r[k])
	}
	return t, nil
}
