package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sink types accepted in the "type" field of a publishers file.
const (
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"
)

const (
	defaultWebhookMethod  = "POST"
	defaultWebhookTimeout = 5 // seconds
)

// PublisherConfig declares one outcome sink. Exactly the block matching Type is read.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id"`
	Type    string                 `json:"type" yaml:"type"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http"`
}

// SQSPublisherConfig points at the queue that receives outcome events.
type SQSPublisherConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSPublisherConfig points at the topic that receives outcome events.
type SNSPublisherConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// PubSubPublisherConfig names the GCP topic. Endpoint overrides the API host.
type PubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// HTTPPublisherConfig describes a webhook receiving each event as a JSON body.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ConfigRegistry is the validated content of a publishers file. It is not
// modified after LoadRegistry returns.
type ConfigRegistry struct {
	publishers []PublisherConfig
	byID       map[string]int
}

// LoadRegistry reads sink declarations from a .yaml, .yml or .json file.
// Files without a known extension are tried as YAML, then JSON.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var doc struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	if err := decodeByExt(raw, filepath.Ext(path), &doc); err != nil {
		return nil, fmt.Errorf("decode publishers file %s: %w", path, err)
	}
	if len(doc.Publishers) == 0 {
		return nil, fmt.Errorf("publishers file %s declares no publishers", path)
	}

	reg := &ConfigRegistry{byID: make(map[string]int, len(doc.Publishers))}
	for i, cfg := range doc.Publishers {
		cfg = cfg.normalized()
		if err := cfg.check(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("publishers[%d]: id %q declared twice", i, cfg.ID)
		}
		reg.byID[cfg.ID] = len(reg.publishers)
		reg.publishers = append(reg.publishers, cfg)
	}
	return reg, nil
}

func decodeByExt(raw []byte, ext string, out any) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(raw, out)
	case ".json":
		return json.Unmarshal(raw, out)
	}
	if err := yaml.Unmarshal(raw, out); err == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.New("neither YAML nor JSON")
	}
	return nil
}

// normalized trims every string field and fills webhook defaults.
func (cfg PublisherConfig) normalized() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		on := true
		cfg.Enabled = &on
	}
	if q := cfg.SQS; q != nil {
		cfg.SQS = &SQSPublisherConfig{
			QueueURL:    strings.TrimSpace(q.QueueURL),
			Region:      strings.TrimSpace(q.Region),
			Credentials: q.Credentials,
		}
	}
	if s := cfg.SNS; s != nil {
		cfg.SNS = &SNSPublisherConfig{
			TopicARN:    strings.TrimSpace(s.TopicARN),
			Region:      strings.TrimSpace(s.Region),
			Credentials: s.Credentials,
		}
	}
	if p := cfg.PubSub; p != nil {
		cfg.PubSub = &PubSubPublisherConfig{
			ProjectID:       strings.TrimSpace(p.ProjectID),
			Topic:           strings.TrimSpace(p.Topic),
			CredentialsFile: strings.TrimSpace(p.CredentialsFile),
			Endpoint:        strings.TrimSpace(p.Endpoint),
		}
	}
	if h := cfg.HTTP; h != nil {
		webhook := HTTPPublisherConfig{
			URL:            strings.TrimSpace(h.URL),
			Method:         strings.ToUpper(strings.TrimSpace(h.Method)),
			Headers:        cleanHeaders(h.Headers),
			TimeoutSeconds: h.TimeoutSeconds,
		}
		if webhook.Method == "" {
			webhook.Method = defaultWebhookMethod
		}
		if webhook.TimeoutSeconds <= 0 {
			webhook.TimeoutSeconds = defaultWebhookTimeout
		}
		cfg.HTTP = &webhook
	}
	return cfg
}

// cleanHeaders drops headers whose name or value is blank.
func cleanHeaders(in map[string]string) map[string]string {
	var out map[string]string
	for k, v := range in {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(in))
		}
		out[k] = v
	}
	return out
}

// check reports the first missing setting for the declared sink type.
// Unknown types pass here and are rejected when the publisher is built.
func (cfg PublisherConfig) check() error {
	if cfg.ID == "" {
		return errors.New("publisher without id")
	}
	if cfg.Type == "" {
		return fmt.Errorf("publisher %q: type missing", cfg.ID)
	}

	var missing string
	switch cfg.Type {
	case TypeSQS:
		switch {
		case cfg.SQS == nil:
			missing = "sqs block"
		case cfg.SQS.QueueURL == "":
			missing = "sqs.uri"
		case cfg.SQS.Region == "":
			missing = "sqs.region"
		}
	case TypeSNS:
		switch {
		case cfg.SNS == nil:
			missing = "sns block"
		case cfg.SNS.TopicARN == "":
			missing = "sns.topic_arn"
		case cfg.SNS.Region == "":
			missing = "sns.region"
		}
	case TypePubSub:
		switch {
		case cfg.PubSub == nil:
			missing = "pubsub block"
		case cfg.PubSub.ProjectID == "":
			missing = "pubsub.project_id"
		case cfg.PubSub.Topic == "":
			missing = "pubsub.topic"
		}
	case TypeHTTP:
		switch {
		case cfg.HTTP == nil:
			missing = "http block"
		case cfg.HTTP.URL == "":
			missing = "http.url"
		}
	}
	if missing != "" {
		return fmt.Errorf("%s publisher %q: %s missing", cfg.Type, cfg.ID, missing)
	}
	return nil
}

// ByID looks up a declaration regardless of whether it is enabled.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.publishers[i], true
}

// All returns every declaration in file order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.publishers...)
}

// Enabled returns the declarations the collector should build, in file order.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.IsEnabled() {
			out = append(out, cfg)
		}
	}
	return out
}

// IsEnabled treats an omitted "enabled" as true.
func (cfg PublisherConfig) IsEnabled() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}
