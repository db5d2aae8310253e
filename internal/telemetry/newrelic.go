package telemetry

import (
	"net/http"
	"time"

	"example.com/outcry/config"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// expectedStatuses are the client errors the back office returns for rejected
// input. They are still reported but do not count against the error rate.
var expectedStatuses = []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict}

// InitNewRelic initializes the New Relic application. It returns nil when
// the agent is disabled or has no license key.
func InitNewRelic(cfg config.NewRelicConfig, app config.AppConfig) (*newrelic.Application, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil, nil
	}

	nrApp, err := newrelic.NewApplication(agentOptions(cfg, app)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create New Relic application")
	}

	if err := nrApp.WaitForConnection(5 * time.Second); err != nil {
		return nil, errors.Wrapf(err, "New Relic did not connect for %s", app.Name)
	}

	return nrApp, nil
}

// agentOptions names the agent after the application when no New Relic name
// is configured and labels it with the running version.
func agentOptions(cfg config.NewRelicConfig, app config.AppConfig) []newrelic.ConfigOption {
	name := cfg.AppName
	if name == "" {
		name = app.Name
	}
	return []newrelic.ConfigOption{
		newrelic.ConfigAppName(name),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
		func(c *newrelic.Config) {
			if c.Labels == nil {
				c.Labels = make(map[string]string)
			}
			c.Labels["service"] = app.Name
			if app.Version != "" {
				c.Labels["version"] = app.Version
			}
			c.ErrorCollector.ExpectStatusCodes = append(c.ErrorCollector.ExpectStatusCodes, expectedStatuses...)
		},
	}
}
