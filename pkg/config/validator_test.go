package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *SimulatorConfig {
	return &SimulatorConfig{
		Simulator: SimulatorConf{
			DefaultScenario:   "default",
			UseDefaultMapping: true,
			Scenarios: []ScenarioConf{
				{Name: "default", Response: ResponseConf{Status: 404}},
				{Name: "GetFoo", Methods: []string{"GET"}, Path: "/foo/{id}", Response: ResponseConf{Status: 200}},
			},
		},
		Server:  ServerConf{Runtime: "local", Port: 8080, NotFoundStatus: 404},
		Logging: LoggingConf{Enabled: true, Level: "info", Format: "json"},
		Metrics: MetricsConf{Datadog: DatadogConf{Addr: "127.0.0.1:8125"}},
	}
}

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		mutate  func(c *SimulatorConfig)
		wantErr string
	}{
		{name: "Valid Config", mutate: func(c *SimulatorConfig) {}},
		{
			name:   "Lambda Without Port",
			mutate: func(c *SimulatorConfig) { c.Server.Runtime = "lambda"; c.Server.Port = 0 },
		},
		{
			name:    "Invalid Runtime",
			mutate:  func(c *SimulatorConfig) { c.Server.Runtime = "k8s" },
			wantErr: "Runtime",
		},
		{
			name:    "Local Without Port",
			mutate:  func(c *SimulatorConfig) { c.Server.Port = 0 },
			wantErr: "Port",
		},
		{
			name:    "Missing Default Scenario Name",
			mutate:  func(c *SimulatorConfig) { c.Simulator.DefaultScenario = "" },
			wantErr: "DefaultScenario",
		},
		{
			name:    "Scenario Without Name",
			mutate:  func(c *SimulatorConfig) { c.Simulator.Scenarios[1].Name = "" },
			wantErr: "Name",
		},
		{
			name:    "Relative Scenario Path",
			mutate:  func(c *SimulatorConfig) { c.Simulator.Scenarios[1].Path = "foo" },
			wantErr: "Path",
		},
		{
			name:    "Invalid Status",
			mutate:  func(c *SimulatorConfig) { c.Simulator.Scenarios[1].Response.Status = 999 },
			wantErr: "Status",
		},
		{
			name:    "Invalid Log Level",
			mutate:  func(c *SimulatorConfig) { c.Logging.Level = "trace" },
			wantErr: "Level",
		},
		{
			name:    "Datadog Enabled Without Addr",
			mutate:  func(c *SimulatorConfig) { c.Metrics.Datadog.Enabled = true; c.Metrics.Datadog.Addr = "" },
			wantErr: "Addr",
		},
		{
			name:    "Redis Without Channel",
			mutate:  func(c *SimulatorConfig) { c.Reload.Redis.Addr = "localhost:6379" },
			wantErr: "Channel",
		},
		{
			name:    "Invalid SQS URL",
			mutate:  func(c *SimulatorConfig) { c.Reload.SQSQueueURL = "not a url" },
			wantErr: "SQSQueueURL",
		},
		{
			name: "Duplicate Scenario",
			mutate: func(c *SimulatorConfig) {
				c.Simulator.Scenarios = append(c.Simulator.Scenarios, ScenarioConf{Name: "GetFoo"})
			},
			wantErr: "cenário duplicado",
		},
		{
			name:    "Unknown Method",
			mutate:  func(c *SimulatorConfig) { c.Simulator.Scenarios[1].Methods = []string{"FETCH"} },
			wantErr: "FETCH",
		},
		{
			name:   "Lowercase Method",
			mutate: func(c *SimulatorConfig) { c.Simulator.Scenarios[1].Methods = []string{"post"} },
		},
		{
			name:    "Dictionary Without Specification",
			mutate:  func(c *SimulatorConfig) { c.Simulator.Swagger.OutboundDictionary = "out.yaml" },
			wantErr: "dicionários",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validator.Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
