package validation

import "testing"

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("name", "ok", v)
	Required("blank", "   ", v)
	Required("empty", "", v)

	if v.Empty() {
		t.Fatal("expected violations")
	}
	if _, ok := v["name"]; ok {
		t.Fatal("valid field flagged")
	}
	if v["blank"] != "required" || v["empty"] != "required" {
		t.Fatalf("violations = %v", v)
	}
}

func TestRequiredID(t *testing.T) {
	v := make(Violations)
	RequiredID("client_id", 0, v)
	RequiredID("user_id", 3, v)
	if v["client_id"] != "required" {
		t.Fatalf("violations = %v", v)
	}
	if _, ok := v["user_id"]; ok {
		t.Fatal("valid id flagged")
	}
}

func TestFloatValidators(t *testing.T) {
	v := make(Violations)
	NonNegativeFloat("discount", -0.01, v)
	NonNegativeFloat("ok", 0, v)
	RangeFloat("tax_rate", 150, 0, 100, v)
	RangeFloat("tax_ok", 100, 0, 100, v)

	if v["discount"] != "must_not_be_negative" {
		t.Fatalf("violations = %v", v)
	}
	if v["tax_rate"] != "out_of_range" {
		t.Fatalf("violations = %v", v)
	}
	if _, ok := v["ok"]; ok {
		t.Fatal("zero flagged as negative")
	}
	if _, ok := v["tax_ok"]; ok {
		t.Fatal("boundary value flagged")
	}
}
