package codec

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

type sample struct {
	ID    string         `json:"id"`
	Data  map[string]any `json:"data,omitempty"`
	Count int            `json:"count"`
}

func TestJSON_Registered(t *testing.T) {
	t.Parallel()

	c := encoding.GetCodec(Name)
	if c == nil {
		t.Fatalf("codec %q is not registered", Name)
	}
	if c.Name() != Name {
		t.Fatalf("unexpected codec name %q", c.Name())
	}
}

func TestJSON_MarshalUnmarshal(t *testing.T) {
	t.Parallel()

	in := sample{ID: "T5", Data: map[string]any{"status": "ASSIGNED"}, Count: 2}
	b, err := JSON{}.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var out sample
	if err := (JSON{}).Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if out.ID != "T5" || out.Count != 2 || out.Data["status"] != "ASSIGNED" {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestJSON_UnmarshalEmptyPayload(t *testing.T) {
	t.Parallel()

	var out sample
	if err := (JSON{}).Unmarshal(nil, &out); err != nil {
		t.Fatalf("empty payload must decode to zero value: %v", err)
	}
	if err := (JSON{}).Unmarshal([]byte("{"), &out); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
