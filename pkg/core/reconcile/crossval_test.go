package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"secrecon/pkg/core/fields"
)

func cand(kind fields.Kind, value string, conf float64) fields.Candidate {
	return fields.Candidate{
		Kind:       kind,
		Raw:        value,
		Value:      decimal.RequireFromString(value),
		Confidence: conf,
		Source:     "test",
	}
}

func qty(value string, conf float64) []fields.Candidate {
	return []fields.Candidate{cand(fields.KindQuantity, value, conf)}
}
func price(value string, conf float64) []fields.Candidate {
	return []fields.Candidate{cand(fields.KindPrice, value, conf)}
}
func val(value string, conf float64) []fields.Candidate {
	return []fields.Candidate{cand(fields.KindValue, value, conf)}
}

var lots = []int{10, 100, 1000}

func TestAgreement(t *testing.T) {
	// 100 × 350.45 = 35045, exact.
	res := Reconcile(qty("100", 0.95), price("350.45", 0.95), val("35045", 0.95), 0.10, lots)
	if res.Method != MethodAgreement {
		t.Fatalf("method = %s, want %s", res.Method, MethodAgreement)
	}
	if !res.Quantity.Value.Equal(decimal.NewFromInt(100)) {
		t.Errorf("quantity = %s", res.Quantity.Value)
	}
	if res.LotSize != 1 {
		t.Errorf("lot size = %d, want 1", res.LotSize)
	}
}

func TestAgreementWithinTolerance(t *testing.T) {
	// 100 × 350.45 = 35045; reported 36000 is within 10%.
	res := Reconcile(qty("100", 0.95), price("350.45", 0.95), val("36000", 0.85), 0.10, lots)
	if res.Method != MethodAgreement {
		t.Errorf("method = %s, want %s", res.Method, MethodAgreement)
	}
}

func TestLotSizeRepair(t *testing.T) {
	// 25 × 420.55 = 10513.75; reported value is 100× that: lot of 100.
	res := Reconcile(qty("25", 0.95), price("420.55", 0.95), val("1051375", 0.95), 0.10, lots)
	if res.Method != MethodLotSize {
		t.Fatalf("method = %s, want %s", res.Method, MethodLotSize)
	}
	if res.LotSize != 100 {
		t.Errorf("lot size = %d, want 100", res.LotSize)
	}
	if !res.Quantity.Value.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("quantity = %s, want 2500", res.Quantity.Value)
	}
}

func TestDerivedQuantityWinsOverProposed(t *testing.T) {
	// Proposed quantity is wildly off and no lot size explains it; the
	// quantity implied by value ÷ price replaces it.
	res := Reconcile(qty("7", 0.70), price("125.78", 0.95), val("25156", 0.85), 0.10, lots)
	if res.Method != MethodDerived {
		t.Fatalf("method = %s, want %s", res.Method, MethodDerived)
	}
	if !res.Quantity.Value.Equal(decimal.NewFromInt(200)) {
		t.Errorf("quantity = %s, want 200", res.Quantity.Value)
	}
	if res.Quantity.Confidence != 0.85 {
		t.Errorf("derived confidence = %v, want min(price, value) = 0.85", res.Quantity.Confidence)
	}
	if res.Quantity.Source != "derived" {
		t.Errorf("source = %s, want derived", res.Quantity.Source)
	}
}

func TestDeriveQuantityFromPriceAndValue(t *testing.T) {
	// 25156 ÷ 125.78 = 200, no quantity proposed at all.
	res := Reconcile(nil, price("125.78", 0.95), val("25156", 0.85), 0.10, lots)
	if res.Method != MethodDerived {
		t.Fatalf("method = %s, want %s", res.Method, MethodDerived)
	}
	if !res.Quantity.Value.Equal(decimal.NewFromInt(200)) {
		t.Errorf("quantity = %s, want 200", res.Quantity.Value)
	}
}

func TestDeriveValueFromQuantityAndPrice(t *testing.T) {
	res := Reconcile(qty("1000", 0.95), price("48.75", 0.85), nil, 0.10, lots)
	if res.Method != MethodDerived {
		t.Fatalf("method = %s, want %s", res.Method, MethodDerived)
	}
	if !res.Value.Value.Equal(decimal.NewFromInt(48750)) {
		t.Errorf("value = %s, want 48750", res.Value.Value)
	}
	if res.Value.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", res.Value.Confidence)
	}
}

func TestDerivePriceFromQuantityAndValue(t *testing.T) {
	res := Reconcile(qty("200", 0.95), nil, val("25156", 0.85), 0.10, lots)
	if res.Method != MethodDerived {
		t.Fatalf("method = %s, want %s", res.Method, MethodDerived)
	}
	if !res.Price.Value.Equal(decimal.RequireFromString("125.78")) {
		t.Errorf("price = %s, want 125.78", res.Price.Value)
	}
}

func TestPassthroughSingleField(t *testing.T) {
	res := Reconcile(qty("100", 0.95), nil, nil, 0.10, lots)
	if res.Method != MethodPassthrough {
		t.Fatalf("method = %s, want %s", res.Method, MethodPassthrough)
	}
	if res.Quantity == nil || res.Price != nil || res.Value != nil {
		t.Errorf("unexpected fields: %+v", res)
	}
}

func TestPassthroughNothing(t *testing.T) {
	res := Reconcile(nil, nil, nil, 0.10, lots)
	if res.Method != MethodPassthrough {
		t.Errorf("method = %s, want %s", res.Method, MethodPassthrough)
	}
}

func TestProposedWhenNoRepairFits(t *testing.T) {
	// 3 × 100 = 300 vs reported 1000: no lot size or derivation yields a
	// clean integer story, but derived still replaces... unless price is
	// zero. Use a zero price to force the proposed path.
	res := Reconcile(qty("3", 0.95), price("0", 0.95), val("1000", 0.95), 0.10, lots)
	if res.Method != MethodProposed {
		t.Fatalf("method = %s, want %s", res.Method, MethodProposed)
	}
	if !res.Quantity.Value.Equal(decimal.NewFromInt(3)) {
		t.Errorf("quantity = %s, want untouched 3", res.Quantity.Value)
	}
}

func TestTopCandidateWinsByConfidence(t *testing.T) {
	qc := []fields.Candidate{
		cand(fields.KindQuantity, "100", 0.95),
		cand(fields.KindQuantity, "999", 0.70),
	}
	res := Reconcile(qc, price("350.45", 0.95), val("35045", 0.95), 0.10, lots)
	if !res.Quantity.Value.Equal(decimal.NewFromInt(100)) {
		t.Errorf("quantity = %s, want the top-ranked 100", res.Quantity.Value)
	}
}
