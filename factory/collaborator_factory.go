package factory

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/real"
	testsim "github.com/opd-ai/mpeg2stinx/testing"
)

// Validation constants for configuration bounds checking.
const (
	// MinInterpolatorTimeout is the minimum allowed worker round trip in milliseconds.
	MinInterpolatorTimeout = 100
	// MaxInterpolatorTimeout is the maximum allowed worker round trip in milliseconds (10 minutes).
	MaxInterpolatorTimeout = 600000
	// DefaultInterpolatorTimeout is the default worker round trip in milliseconds.
	DefaultInterpolatorTimeout = 30000
)

// CollaboratorFactory creates collaborator sets based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type CollaboratorFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.CollaboratorConfig
}

// TestConfigOption is a functional option for customizing test simulation configuration.
type TestConfigOption func(*interfaces.CollaboratorConfig)

// Set is a collaborator set together with the worker process it owns, if any.
type Set struct {
	*interfaces.Collaborators
	worker *real.Worker
}

// Close stops the interpolator worker of the set.
func (s *Set) Close() error {
	if s.worker == nil {
		return nil
	}
	return s.worker.Close()
}

// NewCollaboratorFactory creates a new factory with default configuration
func NewCollaboratorFactory() *CollaboratorFactory {
	return NewCollaboratorFactoryWithConfig(createDefaultConfig())
}

// NewCollaboratorFactoryWithConfig creates a factory whose defaults start
// from config, with environment overrides applied on top.
func NewCollaboratorFactoryWithConfig(config *interfaces.CollaboratorConfig) *CollaboratorFactory {
	defaultConfig := copyConfig(config)
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &CollaboratorFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig initializes the default collaborator configuration.
//
// Default Value Rationale:
//   - UseSimulation: false - In-process implementations by default; simulation must be explicitly enabled
//   - InterpolatorTimeoutMs: 30000ms - A neural interpolator may need a long warm-up on its first field
//   - Device: CPU - OpenCL must be explicitly requested
func createDefaultConfig() *interfaces.CollaboratorConfig {
	return &interfaces.CollaboratorConfig{
		UseSimulation:         false,
		InterpolatorTimeoutMs: DefaultInterpolatorTimeout,
		Device:                interfaces.DeviceCPU,
	}
}

// applyEnvironmentOverrides updates configuration based on environment variables.
// It checks for STINX_* environment variables and overrides defaults if valid values are found.
func applyEnvironmentOverrides(config *interfaces.CollaboratorConfig) {
	parseSimulationSetting(config)
	parseTimeoutSetting(config)
	parseDeviceSetting(config)
	parseCommandSetting(config)
}

// parseSimulationSetting updates the UseSimulation config from STINX_USE_SIMULATION environment variable.
func parseSimulationSetting(config *interfaces.CollaboratorConfig) {
	if useSimStr := os.Getenv("STINX_USE_SIMULATION"); useSimStr != "" {
		useSim, err := strconv.ParseBool(useSimStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseSimulationSetting",
				"env_var":     "STINX_USE_SIMULATION",
				"value":       useSimStr,
				"error":       err.Error(),
				"using_value": config.UseSimulation,
			}).Warn("Failed to parse STINX_USE_SIMULATION environment variable, using default")
			return
		}
		config.UseSimulation = useSim
	}
}

// parseTimeoutSetting updates the InterpolatorTimeoutMs config from STINX_INTERPOLATOR_TIMEOUT.
// Only updates config if parsing succeeds and value is within
// [MinInterpolatorTimeout, MaxInterpolatorTimeout].
func parseTimeoutSetting(config *interfaces.CollaboratorConfig) {
	if timeoutStr := os.Getenv("STINX_INTERPOLATOR_TIMEOUT"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseTimeoutSetting",
				"env_var":     "STINX_INTERPOLATOR_TIMEOUT",
				"value":       timeoutStr,
				"error":       err.Error(),
				"using_value": config.InterpolatorTimeoutMs,
			}).Warn("Failed to parse STINX_INTERPOLATOR_TIMEOUT environment variable, using default")
			return
		}
		if timeout < MinInterpolatorTimeout || timeout > MaxInterpolatorTimeout {
			logrus.WithFields(logrus.Fields{
				"function":    "parseTimeoutSetting",
				"env_var":     "STINX_INTERPOLATOR_TIMEOUT",
				"value":       timeout,
				"min":         MinInterpolatorTimeout,
				"max":         MaxInterpolatorTimeout,
				"using_value": config.InterpolatorTimeoutMs,
			}).Warn("STINX_INTERPOLATOR_TIMEOUT value out of bounds, using default")
			return
		}
		config.InterpolatorTimeoutMs = timeout
	}
}

// parseDeviceSetting updates the Device config from STINX_DEVICE.
func parseDeviceSetting(config *interfaces.CollaboratorConfig) {
	if deviceStr := os.Getenv("STINX_DEVICE"); deviceStr != "" {
		device, err := interfaces.ParseDevice(deviceStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseDeviceSetting",
				"env_var":     "STINX_DEVICE",
				"value":       deviceStr,
				"error":       err.Error(),
				"using_value": config.Device.String(),
			}).Warn("Failed to parse STINX_DEVICE environment variable, using default")
			return
		}
		config.Device = device
	}
}

// parseCommandSetting updates the InterpolatorCommand config from
// STINX_INTERPOLATOR_COMMAND, split on white space.
func parseCommandSetting(config *interfaces.CollaboratorConfig) {
	if command := strings.Fields(os.Getenv("STINX_INTERPOLATOR_COMMAND")); len(command) > 0 {
		config.InterpolatorCommand = command
	}
}

// logConfigurationInfo logs the final configuration settings for debugging purposes.
func logConfigurationInfo(config *interfaces.CollaboratorConfig) {
	logrus.WithFields(logrus.Fields{
		"function":             "NewCollaboratorFactory",
		"use_simulation":       config.UseSimulation,
		"interpolator_timeout": config.InterpolatorTimeoutMs,
		"device":               config.Device.String(),
		"interpolator_command": strings.Join(config.InterpolatorCommand, " "),
	}).Info("Created collaborator factory with configuration")
}

// CreateCollaborators creates a collaborator set based on the current configuration
func (f *CollaboratorFactory) CreateCollaborators(ctx context.Context) (*Set, error) {
	return f.CreateCollaboratorsWithConfig(ctx, f.GetCurrentConfig())
}

// CreateCollaboratorsWithConfig creates a collaborator set with custom
// configuration. With a worker command the set owns a running worker
// process; Close stops it.
func (f *CollaboratorFactory) CreateCollaboratorsWithConfig(ctx context.Context, config *interfaces.CollaboratorConfig) (*Set, error) {
	if config == nil {
		config = f.GetCurrentConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collaborator configuration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "CreateCollaboratorsWithConfig",
		"use_simulation": config.UseSimulation,
		"device":         config.Device.String(),
		"worker":         len(config.InterpolatorCommand) > 0,
	}).Info("Creating collaborator set")

	if config.UseSimulation {
		logrus.WithFields(logrus.Fields{
			"function": "CreateCollaboratorsWithConfig",
			"type":     "simulation",
		}).Info("Creating simulation collaborator set")

		return &Set{Collaborators: simulationSet(config)}, nil
	}

	var worker *real.Worker
	if len(config.InterpolatorCommand) > 0 {
		var err error
		timeout := time.Duration(config.InterpolatorTimeoutMs) * time.Millisecond
		if worker, err = real.StartWorker(ctx, config.InterpolatorCommand, timeout); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateCollaboratorsWithConfig",
		"type":     "real",
	}).Info("Creating in-process collaborator set")

	c := real.NewCollaborators(worker)
	c.Device = config.Device
	return &Set{Collaborators: c, worker: worker}, nil
}

// simulationSet pairs the in-process pixel collaborators with simulated
// interpolation and motion adaptation.
func simulationSet(config *interfaces.CollaboratorConfig) *interfaces.Collaborators {
	c := real.NewCollaborators(nil)
	c.Interpolator = testsim.NewSimulatedInterpolatorWithConfig(config)
	c.MotionDeinterlacer = testsim.NewSimulatedMotionDeinterlacer()
	c.Device = config.Device
	return c
}

// WithInterpolatorTimeout sets a custom worker timeout for the test configuration.
func WithInterpolatorTimeout(timeoutMs int) TestConfigOption {
	return func(c *interfaces.CollaboratorConfig) {
		c.InterpolatorTimeoutMs = timeoutMs
	}
}

// WithDevice sets the interpolator device for the test configuration.
func WithDevice(device interfaces.Device) TestConfigOption {
	return func(c *interfaces.CollaboratorConfig) {
		c.Device = device
	}
}

// CreateSimulationForTesting creates a simulation collaborator set specifically for testing.
// It accepts optional TestConfigOption functions to override default test values.
func (f *CollaboratorFactory) CreateSimulationForTesting(opts ...TestConfigOption) *interfaces.Collaborators {
	testConfig := &interfaces.CollaboratorConfig{
		UseSimulation:         true,
		InterpolatorTimeoutMs: 1000, // Shorter timeout for testing
		Device:                interfaces.DeviceCPU,
	}

	for _, opt := range opts {
		opt(testConfig)
	}

	logrus.WithFields(logrus.Fields{
		"function":             "CreateSimulationForTesting",
		"interpolator_timeout": testConfig.InterpolatorTimeoutMs,
		"device":               testConfig.Device.String(),
	}).Info("Creating simulation collaborator set for testing")

	return simulationSet(testConfig)
}

// SwitchToSimulation switches the configuration to use simulation
func (f *CollaboratorFactory) SwitchToSimulation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.UseSimulation = true
}

// SwitchToReal switches the configuration to use the in-process implementations
func (f *CollaboratorFactory) SwitchToReal() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToReal",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to real mode")

	f.defaultConfig.UseSimulation = false
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *CollaboratorFactory) GetCurrentConfig() *interfaces.CollaboratorConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return copyConfig(f.defaultConfig)
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *CollaboratorFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}

// UpdateConfig updates the factory's default configuration
func (f *CollaboratorFactory) UpdateConfig(config *interfaces.CollaboratorConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid collaborator configuration: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_timeout":    f.defaultConfig.InterpolatorTimeoutMs,
		"new_timeout":    config.InterpolatorTimeoutMs,
	}).Info("Updating factory configuration")

	f.defaultConfig = copyConfig(config)
	return nil
}

func copyConfig(config *interfaces.CollaboratorConfig) *interfaces.CollaboratorConfig {
	c := *config
	c.InterpolatorCommand = append([]string(nil), config.InterpolatorCommand...)
	return &c
}
