package optional

import (
	"encoding/json"
	"testing"
)

func TestOptionalSetAndUnset(t *testing.T) {
	var o Optional[float64]
	if o.IsSet() {
		t.Fatal("zero value should be unset")
	}
	if got := o.OrElse(2); got != 2 {
		t.Fatalf("expected fallback 2, got %v", got)
	}
	o.Set(0.5)
	if v, ok := o.Get(); !ok || v != 0.5 {
		t.Fatalf("expected 0.5, got %v (set=%v)", v, ok)
	}
	o.Unset()
	if _, ok := o.Get(); ok {
		t.Fatal("expected unset after Unset")
	}
}

func TestOptionalJSONUsesNull(t *testing.T) {
	type payload struct {
		File Optional[string] `json:"file"`
	}
	data, err := json.Marshal(payload{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"file":null}` {
		t.Fatalf("unexpected json: %s", data)
	}

	var decoded payload
	if err := json.Unmarshal([]byte(`{"file":"/tmp/a.mp3"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := decoded.File.Get(); !ok || v != "/tmp/a.mp3" {
		t.Fatalf("unexpected decoded value %q (set=%v)", v, ok)
	}
	if err := json.Unmarshal([]byte(`{"file":null}`), &decoded); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if decoded.File.IsSet() {
		t.Fatal("expected null to unset")
	}
}
