package feeds

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "feeds.yaml", `
feeds:
  - id: btc-ticker
    endpoint: Ticker
    params:
      product_code: BTC_JPY
  - id: health
    endpoint: gethealth
    enabled: false
`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(reg.All()))
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "btc-ticker" {
		t.Fatalf("unexpected enabled feeds %#v", enabled)
	}
	f, ok := reg.ByID("btc-ticker")
	if !ok || f.Endpoint != "ticker" || f.Params["product_code"] != "BTC_JPY" {
		t.Fatalf("unexpected feed %#v", f)
	}
	ep, ok := f.EndpointSpec()
	if !ok || ep.Path != "/v1/ticker" {
		t.Fatalf("unexpected endpoint %+v", ep)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "feeds.json", `{"feeds":[{"id":"board","endpoint":"board","params":{"product_code":"ETH_JPY"}}]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.ByID("board"); !ok {
		t.Fatalf("expected board feed")
	}
}

func TestLoadRegistryRejectsUnknownEndpoint(t *testing.T) {
	path := writeFile(t, "feeds.yaml", `
feeds:
  - id: bogus
    endpoint: getfoo
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for unknown endpoint")
	}
}

func TestNewRegistryRejectsDuplicateIDs(t *testing.T) {
	_, err := NewRegistry([]Feed{
		{ID: "a", Endpoint: "ticker"},
		{ID: "a", Endpoint: "board"},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
