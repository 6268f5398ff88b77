package stdconfig

import "testing"

func TestNewLoadsEmbeddedCatalogue(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !c.IsSupportedStandard(0x0BAB) {
		t.Fatalf("expected 0x0BAB (pulse oximeter) to be a supported standard")
	}
	if c.IsSupportedStandard(0xFFFF) {
		t.Fatalf("0xFFFF should not be a supported standard")
	}
}

func TestLookupReturnsObjects(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	objs, ok := c.Lookup(0x0BC9)
	if !ok {
		t.Fatalf("Lookup(0x0BC9) not found")
	}
	if len(objs) != 3 {
		t.Fatalf("len(objs) = %d, want 3", len(objs))
	}
}

func TestReloadFromOverlayAddsAndOverrides(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	overlay := []byte(`
configs:
  - config_report_id: 0x9000
    objects:
      - obj_class: numeric
        obj_handle: 1
        attributes: []
`)
	if err := c.ReloadFromOverlay(overlay); err != nil {
		t.Fatalf("ReloadFromOverlay error: %v", err)
	}
	if !c.IsSupportedStandard(0x9000) {
		t.Fatalf("overlay entry 0x9000 not merged")
	}
	if !c.IsSupportedStandard(0x0BAB) {
		t.Fatalf("builtin entry 0x0BAB lost after overlay merge")
	}
}
