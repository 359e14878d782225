package utils

import "testing"

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestSmartParse_Strict(t *testing.T) {
	var s sample
	strategy, err := SmartParse([]byte(`{"name": "acme", "value": 1.5}`), &s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyJSON {
		t.Errorf("expected strict JSON, got %s", strategy)
	}
	if s.Name != "acme" || s.Value != 1.5 {
		t.Errorf("unexpected result %+v", s)
	}
}

func TestSmartParse_TrailingComma(t *testing.T) {
	var s sample
	strategy, err := SmartParse([]byte(`{"name": "acme", "value": 2,}`), &s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy == StrategyJSON {
		t.Error("trailing comma should not pass the strict parser")
	}
	if s.Name != "acme" || s.Value != 2 {
		t.Errorf("unexpected result %+v", s)
	}
}

func TestSmartParse_TypeMismatch(t *testing.T) {
	var s sample
	if _, err := SmartParse([]byte(`{"name": "acme", "value": "lots"}`), &s); err == nil {
		t.Error("expected an error for a string where a number belongs")
	}
}

func TestHJSONToJSON(t *testing.T) {
	out, err := HJSONToJSON([]byte("# comment\nname: acme\nvalue: 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s sample
	if _, err := SmartParse(out, &s); err != nil {
		t.Fatalf("converted output should be strict JSON: %v", err)
	}
	if s.Name != "acme" || s.Value != 3 {
		t.Errorf("unexpected result %+v", s)
	}
}
