package factory

import "testing"

func TestRegistry(t *testing.T) {
	r := NewRegistry[string]()
	if err := r.Register("upper", func(map[string]any) (string, error) { return "UP", nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("upper", func(map[string]any) (string, error) { return "", nil }); err == nil {
		t.Fatal("expected an error on duplicate registration")
	}
	if err := r.Register("nil", nil); err == nil {
		t.Fatal("expected an error on nil factory")
	}

	got, err := r.Create(ModuleConfig{Type: "upper"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got != "UP" {
		t.Fatalf("create = %q", got)
	}
	if _, err := r.Create(ModuleConfig{Type: "missing"}); err == nil {
		t.Fatal("expected an error for an unknown type")
	}
}

func TestDecode(t *testing.T) {
	var out struct {
		URL   string `json:"url"`
		Limit int    `json:"limit"`
	}
	data := map[string]any{"url": "http://localhost:8086", "limit": 5}
	if err := Decode(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.URL != "http://localhost:8086" || out.Limit != 5 {
		t.Fatalf("decoded = %+v", out)
	}
}
