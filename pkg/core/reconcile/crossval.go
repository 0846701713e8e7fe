// Package reconcile reduces the ranked candidate lists of one source to
// a single consistent (quantity, price, value) triple, using the
// arithmetic identity quantity × price = value as the referee between
// competing proposals.
package reconcile

import (
	"github.com/shopspring/decimal"

	"secrecon/pkg/core/fields"
	"secrecon/pkg/core/security"
)

// Reconciliation methods, recorded on the result so the assembly stage
// and any audit trail can tell how the numbers were settled.
const (
	MethodAgreement   = "agreement"
	MethodLotSize     = "lot-size"
	MethodDerived     = "derived"
	MethodProposed    = "proposed"
	MethodPassthrough = "passthrough"
)

// Result is the settled numeric triple for one source. Fields the
// candidates could not support stay nil.
type Result struct {
	Quantity *security.NumField
	Price    *security.NumField
	Value    *security.NumField

	// LotSize is the multiplier applied to the proposed quantity when
	// the lot-size method fired, 1 otherwise.
	LotSize int
	Method  string
}

// Reconcile settles the three candidate lists. It never fails: with too
// little signal to cross-check it passes the top proposals through
// unchanged and says so in Method.
//
// When all three fields have proposals and the arithmetic disagrees, the
// derived quantity (value ÷ price) wins over the proposed one, because a
// quantity misread by an order of magnitude is the most common OCR-style
// defect while price and value carry currency anchors.
func Reconcile(qc, pc, vc []fields.Candidate, tolerance float64, lotSizes []int) Result {
	q := top(qc)
	p := top(pc)
	v := top(vc)

	switch {
	case q != nil && p != nil && v != nil:
		return SettleTriple(q, p, v, tolerance, lotSizes)
	case q == nil && p != nil && v != nil:
		return deriveQuantity(p, v)
	case v == nil && q != nil && p != nil:
		return Result{
			Quantity: q,
			Price:    p,
			Value:    derive(q.Value.Mul(p.Value), minConf(q, p)),
			LotSize:  1,
			Method:   MethodDerived,
		}
	case p == nil && q != nil && v != nil && q.Value.Sign() != 0:
		return Result{
			Quantity: q,
			Price:    derive(v.Value.Div(q.Value), minConf(q, v)),
			Value:    v,
			LotSize:  1,
			Method:   MethodDerived,
		}
	}

	// Zero or one field: nothing to cross-check.
	return Result{Quantity: q, Price: p, Value: v, LotSize: 1, Method: MethodPassthrough}
}

// SettleTriple settles a full (quantity, price, value) triple. Exposed
// separately from Reconcile so merged records whose fields came from
// different sources can be re-settled against the same identity.
func SettleTriple(q, p, v *security.NumField, tolerance float64, lotSizes []int) Result {
	if Consistent(q.Value, p.Value, v.Value, tolerance) {
		return Result{Quantity: q, Price: p, Value: v, LotSize: 1, Method: MethodAgreement}
	}

	// A statement quoting nominal lots instead of units produces a
	// quantity off by a clean factor; try the known lot sizes before
	// anything destructive.
	for _, lot := range lotSizes {
		scaled := q.Value.Mul(decimal.NewFromInt(int64(lot)))
		if Consistent(scaled, p.Value, v.Value, tolerance) {
			return Result{
				Quantity: &security.NumField{Value: scaled, Confidence: q.Confidence, Source: q.Source},
				Price:    p,
				Value:    v,
				LotSize:  lot,
				Method:   MethodLotSize,
			}
		}
	}

	if p.Value.Sign() != 0 {
		derived := v.Value.Div(p.Value)
		if derived.Sign() > 0 {
			return Result{
				Quantity: derive(derived, minConf(p, v)),
				Price:    p,
				Value:    v,
				LotSize:  1,
				Method:   MethodDerived,
			}
		}
	}

	// No repair found a consistent triple; keep the proposals as-is.
	return Result{Quantity: q, Price: p, Value: v, LotSize: 1, Method: MethodProposed}
}

func deriveQuantity(p, v *security.NumField) Result {
	if p.Value.Sign() == 0 {
		return Result{Price: p, Value: v, LotSize: 1, Method: MethodPassthrough}
	}
	return Result{
		Quantity: derive(v.Value.Div(p.Value), minConf(p, v)),
		Price:    p,
		Value:    v,
		LotSize:  1,
		Method:   MethodDerived,
	}
}

// Consistent reports whether q×p matches v within the relative
// tolerance.
func Consistent(q, p, v decimal.Decimal, tolerance float64) bool {
	if v.Sign() == 0 {
		return q.Mul(p).Sign() == 0
	}
	diff := q.Mul(p).Sub(v).Abs()
	limit := v.Abs().Mul(decimal.NewFromFloat(tolerance))
	return diff.LessThanOrEqual(limit)
}

// top returns the highest-ranked candidate as a field, or nil.
func top(cands []fields.Candidate) *security.NumField {
	if len(cands) == 0 {
		return nil
	}
	c := cands[0]
	return &security.NumField{Value: c.Value, Confidence: c.Confidence, Source: c.Source}
}

func derive(d decimal.Decimal, conf float64) *security.NumField {
	return &security.NumField{Value: d, Confidence: conf, Source: "derived"}
}

func minConf(a, b *security.NumField) float64 {
	if a.Confidence < b.Confidence {
		return a.Confidence
	}
	return b.Confidence
}
