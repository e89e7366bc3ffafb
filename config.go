package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"

	"github.com/BurntSushi/toml"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// fileConfig is the format of the optional TOML file given with -config.
//
//	base_url = "https://wiki.example.com"
//	kb_id = "kb-123"
//
//	[[probes]]
//	name = "long answer"
//	path = "/share/v1/chat/message"
//	message = "Summarize the onboarding guide"
//	app_type = 1
//	max_events = 500
//	timeout_seconds = 120
type fileConfig struct {
	BaseURL  string      `toml:"base_url"`
	KBID     string      `toml:"kb_id"`
	Password string      `toml:"password"`
	Probes   []fileProbe `toml:"probes"`
}

type fileProbe struct {
	Name              string            `toml:"name"`
	Path              string            `toml:"path"`
	Message           string            `toml:"message"`
	AppType           int               `toml:"app_type"`
	MaxEvents         int               `toml:"max_events"`
	TimeoutSeconds    int               `toml:"timeout_seconds"`
	MaxDecodeFailures int               `toml:"max_decode_failures"`
	Headers           map[string]string `toml:"headers"`
}

// loadProbes works out the probes to run. Values from the config file override the built-in
// defaults, and flags given explicitly on the command line override the config file. If the
// file defines no probes, the two default probes are used against the resulting target.
func loadProbes(params commandParams) ([]probedef.ProbeParams, error) {
	cfg := fileConfig{
		BaseURL: probedef.DefaultBaseURL,
		KBID:    probedef.DefaultKBID,
	}
	if params.configFile != "" {
		if _, err := toml.DecodeFile(params.configFile, &cfg); err != nil {
			return nil, fmt.Errorf("could not read config file %q: %w", params.configFile, err)
		}
	}
	if params.explicitlySet["url"] || cfg.BaseURL == "" {
		cfg.BaseURL = params.baseURL
	}
	if params.explicitlySet["kb-id"] || cfg.KBID == "" {
		cfg.KBID = params.kbID
	}
	if params.explicitlySet["password"] {
		cfg.Password = params.password
	}

	if len(cfg.Probes) == 0 {
		return probedef.DefaultProbes(cfg.BaseURL, cfg.KBID, cfg.Password), nil
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	probes := make([]probedef.ProbeParams, 0, len(cfg.Probes))
	for i, fp := range cfg.Probes {
		p, err := fp.toParams(baseURL, cfg.KBID, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("probe %d in %q: %w", i+1, params.configFile, err)
		}
		probes = append(probes, p)
	}
	return probes, nil
}

func (fp fileProbe) toParams(baseURL, kbID, password string) (probedef.ProbeParams, error) {
	if fp.Name == "" {
		return probedef.ProbeParams{}, fmt.Errorf("name is required")
	}
	path := fp.Path
	if path == "" {
		path = probedef.MessagePath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	appType := fp.AppType
	if appType == 0 {
		appType = probedef.AppTypeWeb
		if path == probedef.WidgetPath {
			appType = probedef.AppTypeWidget
		}
	}
	if appType != probedef.AppTypeWeb && appType != probedef.AppTypeWidget {
		return probedef.ProbeParams{}, fmt.Errorf("app_type must be %d or %d, not %d",
			probedef.AppTypeWeb, probedef.AppTypeWidget, appType)
	}

	headers := probedef.StreamHeaders(kbID)
	if password != "" {
		headers[probedef.HeaderAuthPassword] = password
	}
	for k, v := range fp.Headers {
		headers[k] = v
	}

	p := probedef.ProbeParams{
		Name:    fp.Name,
		URL:     baseURL + path,
		Headers: headers,
		Request: probedef.ChatRequest{Message: fp.Message, AppType: appType},
	}
	bounds := defaultBounds(path)
	p.MaxEvents, p.TimeoutMS = bounds.MaxEvents, bounds.TimeoutMS
	if fp.MaxEvents > 0 {
		p.MaxEvents = ldvalue.NewOptionalInt(fp.MaxEvents)
	}
	if fp.TimeoutSeconds > 0 {
		p.TimeoutMS = ldvalue.NewOptionalInt(int(time.Duration(fp.TimeoutSeconds) * time.Second / time.Millisecond))
	}
	if fp.MaxDecodeFailures > 0 {
		p.MaxDecodeFailures = ldvalue.NewOptionalInt(fp.MaxDecodeFailures)
	}
	return p, nil
}

// defaultBounds returns the built-in probe for the same endpoint, whose event cap and timeout
// apply when the config file leaves them out. Unknown paths get the message probe's bounds.
func defaultBounds(path string) probedef.ProbeParams {
	defaults := probedef.DefaultProbes("", "", "")
	for _, d := range defaults {
		if d.URL == path {
			return d
		}
	}
	return defaults[0]
}
