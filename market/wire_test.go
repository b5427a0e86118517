package market

import "testing"

func TestDecodeWireCanonicalShape(t *testing.T) {
	payload := []byte(`{
		"id": "detroit-mi",
		"name": "Detroit, MI",
		"city": "Detroit",
		"state": "MI",
		"saleData": {"medianPrice": 245000, "averagePrice": 251000},
		"percentChange": 2.4,
		"historicalPrices": [{"date": "2024-01-01", "price": 240000}]
	}`)

	s, err := DecodeWire(payload)
	if err != nil {
		t.Fatalf("DecodeWire failed: %v", err)
	}
	if s.SaleData.MedianPrice != 245000 {
		t.Errorf("median = %v", s.SaleData.MedianPrice)
	}
	if s.PercentChange != 2.4 || s.Direction != DirectionUp {
		t.Errorf("change = %v direction = %q", s.PercentChange, s.Direction)
	}
	if len(s.HistoricalPrices) != 1 {
		t.Errorf("history = %v", s.HistoricalPrices)
	}
}

func TestDecodeWireFoldsLegacyFlatFields(t *testing.T) {
	payload := []byte(`{
		"city": "Austin",
		"state": "TX",
		"medianPrice": 550000,
		"averagePrice": 560000,
		"minPrice": 300000,
		"maxPrice": 900000,
		"lastUpdatedDate": "2024-03-31"
	}`)

	s, err := DecodeWire(payload)
	if err != nil {
		t.Fatalf("DecodeWire failed: %v", err)
	}
	if s.SaleData.MedianPrice != 550000 {
		t.Errorf("legacy median not folded: %v", s.SaleData.MedianPrice)
	}
	if s.SaleData.MinPrice == nil || *s.SaleData.MinPrice != 300000 {
		t.Error("legacy min not folded")
	}
	if s.SaleData.LastUpdated != "2024-03-31" {
		t.Errorf("legacy lastUpdated not folded: %q", s.SaleData.LastUpdated)
	}
	if s.Name != "Austin, TX" {
		t.Errorf("derived name = %q", s.Name)
	}
	if s.ID != "austin-tx" {
		t.Errorf("derived id = %q", s.ID)
	}
	if s.Direction != DirectionNeutral {
		t.Errorf("missing percent change must default to neutral, got %q", s.Direction)
	}
}

func TestDecodeWireMalformedPayload(t *testing.T) {
	if _, err := DecodeWire([]byte("not json")); err == nil {
		t.Fatal("expected decode failure")
	}
}

func TestDecodeWirePrefersNestedSaleData(t *testing.T) {
	payload := []byte(`{
		"id": "x", "name": "X",
		"saleData": {"medianPrice": 100000},
		"medianPrice": 999999
	}`)
	s, err := DecodeWire(payload)
	if err != nil {
		t.Fatal(err)
	}
	if s.SaleData.MedianPrice != 100000 {
		t.Errorf("nested saleData must win over legacy fields, got %v", s.SaleData.MedianPrice)
	}
}
