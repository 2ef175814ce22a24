package plugins

import "testing"

func TestDefinitionValidate(t *testing.T) {
	def := Definition{ID: " fast ", Role: "Transition", Base: "scaled"}
	if err := def.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	normalized := def.Normalized()
	if normalized.ID != "fast" || normalized.Role != "transition" {
		t.Fatalf("normalized = %+v", normalized)
	}
}

func TestDefinitionValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
	}{
		{"missing id", Definition{Role: "transition", Base: "scaled"}},
		{"unknown role", Definition{ID: "x", Role: "mystery", Base: "scaled"}},
		{"missing base", Definition{ID: "x", Role: "transition"}},
	}
	for _, tc := range cases {
		if err := tc.def.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestNormalizedDropsEmptyParamKeys(t *testing.T) {
	def := Definition{ID: "x", Role: "transition", Base: "scaled", Params: map[string]any{" ": 1, "factor": 2}}
	normalized := def.Normalized()
	if len(normalized.Params) != 1 {
		t.Fatalf("params = %v, want only factor", normalized.Params)
	}
	if normalized.Params["factor"] != 2 {
		t.Fatalf("factor = %v", normalized.Params["factor"])
	}
}
