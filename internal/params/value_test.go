package params

import "testing"

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want ValueType
	}{
		{"float", 10.5, TypeFloat},
		{"integral float", 10.0, TypeInt},
		{"bool", true, TypeBool},
		{"string", "Mono8", TypeString},
		{"nil", nil, TypeNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromJSON(tt.raw)
			if err != nil {
				t.Fatalf("FromJSON() error = %v", err)
			}
			if v.Type != tt.want {
				t.Errorf("Type = %v, want %v", v.Type, tt.want)
			}
		})
	}
}

func TestValue_Coercions(t *testing.T) {
	intVal := Value{Type: TypeInt, Int: 5, Float: 5}

	if f, ok := intVal.AsFloat(); !ok || f != 5.0 {
		t.Errorf("AsFloat() = %v, %v; want 5, true", f, ok)
	}

	floatVal := Value{Type: TypeFloat, Float: 5.5}
	if _, ok := floatVal.AsInt(); ok {
		t.Error("AsInt() on 5.5 succeeded, want failure")
	}

	integral := Value{Type: TypeFloat, Float: 7.0}
	if i, ok := integral.AsInt(); !ok || i != 7 {
		t.Errorf("AsInt() = %v, %v; want 7, true", i, ok)
	}

	one := Value{Type: TypeInt, Int: 1}
	if b, ok := one.AsBool(); !ok || !b {
		t.Errorf("AsBool(1) = %v, %v; want true, true", b, ok)
	}
	two := Value{Type: TypeInt, Int: 2}
	if _, ok := two.AsBool(); ok {
		t.Error("AsBool(2) succeeded, want failure")
	}

	str := Value{Type: TypeString, Str: "Off"}
	if _, ok := str.AsFloat(); ok {
		t.Error("AsFloat() on string succeeded, want failure")
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Value{Type: TypeFloat, Float: 10.5}, "10.5"},
		{Value{Type: TypeInt, Int: 42}, "42"},
		{Value{Type: TypeBool, Bool: true}, "true"},
		{Value{Type: TypeString, Str: "Mono8"}, "Mono8"},
		{Value{Type: TypeNull}, "null"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
