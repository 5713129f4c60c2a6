package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidateRejectsMissingHTTP(t *testing.T) {
	err := PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	}.validate()
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryJSONWithQueues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.json")
	raw := `{"publishers":[
  {"id":" sqs ","type":"SQS","sqs":{"uri":"https://sqs.example.com/q","region":"ap-northeast-1"}},
  {"id":"sns","type":"sns","sns":{"topic_arn":"arn:aws:sns:ap-northeast-1:1:t","region":"ap-northeast-1"}},
  {"id":"gcp","type":"gcp_pubsub","gcp_pubsub":{"project_id":"p","topic":"t"}}
]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("sqs")
	if !ok || cfg.Type != TypeSQS {
		t.Fatalf("expected normalized sqs entry, got %#v", cfg)
	}
	if len(reg.All()) != 3 {
		t.Fatalf("expected 3 publishers, got %d", len(reg.All()))
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := map[string]PublisherConfig{
		"sns without arn":    {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		"sqs without region": {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		"pubsub no topic":    {ID: "g", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}},
		"unknown type":       {ID: "k", Type: "kafka"},
		"missing id":         {Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x"}},
	}
	for name, cfg := range cases {
		if err := cfg.validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
