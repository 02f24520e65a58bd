package factory

import (
	"context"
	"testing"

	"github.com/opd-ai/mpeg2stinx/interfaces"
	testsim "github.com/opd-ai/mpeg2stinx/testing"
)

// TestNewCollaboratorFactory verifies factory creation with defaults
func TestNewCollaboratorFactory(t *testing.T) {
	factory := NewCollaboratorFactory()
	if factory == nil {
		t.Fatal("NewCollaboratorFactory returned nil")
	}

	config := factory.GetCurrentConfig()
	if config == nil {
		t.Fatal("GetCurrentConfig returned nil")
	}

	if config.InterpolatorTimeoutMs != DefaultInterpolatorTimeout {
		t.Errorf("expected default InterpolatorTimeoutMs %d, got %d", DefaultInterpolatorTimeout, config.InterpolatorTimeoutMs)
	}
	if config.Device != interfaces.DeviceCPU {
		t.Errorf("expected default Device cpu, got %v", config.Device)
	}
}

// TestEnvironmentVariableParsing verifies environment variable handling
func TestEnvironmentVariableParsing(t *testing.T) {
	tests := []struct {
		name        string
		envKey      string
		envValue    string
		checkFunc   func(*interfaces.CollaboratorConfig) bool
		description string
	}{
		{
			name:        "valid_simulation_true",
			envKey:      "STINX_USE_SIMULATION",
			envValue:    "true",
			checkFunc:   func(c *interfaces.CollaboratorConfig) bool { return c.UseSimulation },
			description: "UseSimulation should be true",
		},
		{
			name:        "invalid_simulation_value",
			envKey:      "STINX_USE_SIMULATION",
			envValue:    "maybe",
			checkFunc:   func(c *interfaces.CollaboratorConfig) bool { return !c.UseSimulation }, // Falls back to default
			description: "UseSimulation should fall back to default (false) on invalid value",
		},
		{
			name:        "valid_timeout",
			envKey:      "STINX_INTERPOLATOR_TIMEOUT",
			envValue:    "5000",
			checkFunc:   func(c *interfaces.CollaboratorConfig) bool { return c.InterpolatorTimeoutMs == 5000 },
			description: "InterpolatorTimeoutMs should be 5000",
		},
		{
			name:     "invalid_timeout_value",
			envKey:   "STINX_INTERPOLATOR_TIMEOUT",
			envValue: "soon",
			checkFunc: func(c *interfaces.CollaboratorConfig) bool {
				return c.InterpolatorTimeoutMs == DefaultInterpolatorTimeout
			},
			description: "InterpolatorTimeoutMs should fall back to default on invalid value",
		},
		{
			name:     "timeout_below_minimum",
			envKey:   "STINX_INTERPOLATOR_TIMEOUT",
			envValue: "50", // Below MinInterpolatorTimeout (100)
			checkFunc: func(c *interfaces.CollaboratorConfig) bool {
				return c.InterpolatorTimeoutMs == DefaultInterpolatorTimeout
			},
			description: "InterpolatorTimeoutMs should fall back to default when below minimum",
		},
		{
			name:     "timeout_above_maximum",
			envKey:   "STINX_INTERPOLATOR_TIMEOUT",
			envValue: "700000", // Above MaxInterpolatorTimeout (600000)
			checkFunc: func(c *interfaces.CollaboratorConfig) bool {
				return c.InterpolatorTimeoutMs == DefaultInterpolatorTimeout
			},
			description: "InterpolatorTimeoutMs should fall back to default when above maximum",
		},
		{
			name:        "timeout_at_minimum",
			envKey:      "STINX_INTERPOLATOR_TIMEOUT",
			envValue:    "100",
			checkFunc:   func(c *interfaces.CollaboratorConfig) bool { return c.InterpolatorTimeoutMs == 100 },
			description: "InterpolatorTimeoutMs should accept value at minimum boundary",
		},
		{
			name:        "timeout_at_maximum",
			envKey:      "STINX_INTERPOLATOR_TIMEOUT",
			envValue:    "600000",
			checkFunc:   func(c *interfaces.CollaboratorConfig) bool { return c.InterpolatorTimeoutMs == 600000 },
			description: "InterpolatorTimeoutMs should accept value at maximum boundary",
		},
		{
			name:        "valid_device",
			envKey:      "STINX_DEVICE",
			envValue:    "OpenCL",
			checkFunc:   func(c *interfaces.CollaboratorConfig) bool { return c.Device == interfaces.DeviceOpenCL },
			description: "Device should be opencl",
		},
		{
			name:        "invalid_device",
			envKey:      "STINX_DEVICE",
			envValue:    "tpu",
			checkFunc:   func(c *interfaces.CollaboratorConfig) bool { return c.Device == interfaces.DeviceCPU },
			description: "Device should fall back to default (cpu) on invalid value",
		},
		{
			name:     "command",
			envKey:   "STINX_INTERPOLATOR_COMMAND",
			envValue: "  nnedi3-worker --nsize 3 ",
			checkFunc: func(c *interfaces.CollaboratorConfig) bool {
				return len(c.InterpolatorCommand) == 3 && c.InterpolatorCommand[0] == "nnedi3-worker" &&
					c.InterpolatorCommand[2] == "3"
			},
			description: "InterpolatorCommand should be split on white space",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			// Create factory (which applies environment overrides)
			factory := NewCollaboratorFactory()
			config := factory.GetCurrentConfig()

			if !tt.checkFunc(config) {
				t.Errorf("%s failed: %s", tt.name, tt.description)
			}
		})
	}
}

// TestCreateCollaboratorsSimulation verifies simulation mode creation
func TestCreateCollaboratorsSimulation(t *testing.T) {
	factory := NewCollaboratorFactory()
	factory.SwitchToSimulation()

	set, err := factory.CreateCollaborators(context.Background())
	if err != nil {
		t.Fatalf("CreateCollaborators failed: %v", err)
	}
	defer set.Close()

	all := interfaces.NeedResizer | interfaces.NeedInterpolator | interfaces.NeedMotionDeinterlacer |
		interfaces.NeedRepairer | interfaces.NeedAverager
	if err := set.Check(all); err != nil {
		t.Errorf("simulation set incomplete: %v", err)
	}
}

// TestCreateCollaboratorsReal verifies the in-process set without a worker
func TestCreateCollaboratorsReal(t *testing.T) {
	factory := NewCollaboratorFactory()
	factory.SwitchToReal()

	config := factory.GetCurrentConfig()
	config.InterpolatorCommand = nil
	set, err := factory.CreateCollaboratorsWithConfig(context.Background(), config)
	if err != nil {
		t.Fatalf("CreateCollaboratorsWithConfig failed: %v", err)
	}
	if err := set.Close(); err != nil {
		t.Errorf("Close without worker should succeed, got %v", err)
	}

	if set.Interpolator != nil {
		t.Error("expected no interpolator without a worker command")
	}
	if err := set.Check(interfaces.NeedResizer | interfaces.NeedRepairer | interfaces.NeedAverager |
		interfaces.NeedMotionDeinterlacer); err != nil {
		t.Errorf("real set incomplete: %v", err)
	}
}

// TestCreateCollaboratorsInvalidConfig verifies configuration validation
func TestCreateCollaboratorsInvalidConfig(t *testing.T) {
	factory := NewCollaboratorFactory()

	_, err := factory.CreateCollaboratorsWithConfig(context.Background(), &interfaces.CollaboratorConfig{
		InterpolatorTimeoutMs: 0,
	})
	if err == nil {
		t.Error("expected error for zero timeout")
	}
}

// TestCreateCollaboratorsWorkerStartFailure verifies a missing worker binary is reported
func TestCreateCollaboratorsWorkerStartFailure(t *testing.T) {
	factory := NewCollaboratorFactory()

	_, err := factory.CreateCollaboratorsWithConfig(context.Background(), &interfaces.CollaboratorConfig{
		InterpolatorCommand:   []string{"/nonexistent/nnedi3-worker"},
		InterpolatorTimeoutMs: 1000,
	})
	if err == nil {
		t.Error("expected error for a worker that cannot start")
	}
}

// TestCreateSimulationForTesting verifies the test helper
func TestCreateSimulationForTesting(t *testing.T) {
	factory := NewCollaboratorFactory()

	c := factory.CreateSimulationForTesting()
	if c == nil {
		t.Fatal("CreateSimulationForTesting returned nil")
	}
	if c.Interpolator == nil || c.MotionDeinterlacer == nil {
		t.Error("simulation set should include interpolator and motion deinterlacer")
	}
	sim, ok := c.Interpolator.(*testsim.SimulatedInterpolator)
	if !ok {
		t.Fatalf("expected a simulated interpolator, got %T", c.Interpolator)
	}
	if sim.Config().InterpolatorTimeoutMs != 1000 {
		t.Errorf("expected test InterpolatorTimeoutMs 1000, got %d", sim.Config().InterpolatorTimeoutMs)
	}
	if c.Device != interfaces.DeviceCPU {
		t.Errorf("expected test Device cpu, got %v", c.Device)
	}
}

// TestCreateSimulationForTestingOptions verifies test options reach the simulated set
func TestCreateSimulationForTestingOptions(t *testing.T) {
	factory := NewCollaboratorFactory()

	c := factory.CreateSimulationForTesting(WithInterpolatorTimeout(50), WithDevice(interfaces.DeviceOpenCL))
	sim, ok := c.Interpolator.(*testsim.SimulatedInterpolator)
	if !ok {
		t.Fatalf("expected a simulated interpolator, got %T", c.Interpolator)
	}
	if sim.Config().InterpolatorTimeoutMs != 50 {
		t.Errorf("expected InterpolatorTimeoutMs 50, got %d", sim.Config().InterpolatorTimeoutMs)
	}
	if sim.Config().Device != interfaces.DeviceOpenCL {
		t.Errorf("expected interpolator Device opencl, got %v", sim.Config().Device)
	}
	if c.Device != interfaces.DeviceOpenCL {
		t.Errorf("expected set Device opencl, got %v", c.Device)
	}
}

// TestCreateCollaboratorsCarriesDevice verifies the configured device reaches the set
func TestCreateCollaboratorsCarriesDevice(t *testing.T) {
	factory := NewCollaboratorFactory()

	for _, simulation := range []bool{false, true} {
		set, err := factory.CreateCollaboratorsWithConfig(context.Background(), &interfaces.CollaboratorConfig{
			UseSimulation:         simulation,
			Device:                interfaces.DeviceOpenCL,
			InterpolatorTimeoutMs: 1000,
		})
		if err != nil {
			t.Fatalf("CreateCollaboratorsWithConfig failed: %v", err)
		}
		if set.Device != interfaces.DeviceOpenCL {
			t.Errorf("simulation=%v: expected Device opencl, got %v", simulation, set.Device)
		}
		set.Close()
	}
}

// TestSwitchModes verifies runtime mode switching
func TestSwitchModes(t *testing.T) {
	factory := NewCollaboratorFactory()

	factory.SwitchToSimulation()
	if !factory.IsUsingSimulation() {
		t.Error("expected simulation mode after SwitchToSimulation")
	}

	factory.SwitchToReal()
	if factory.IsUsingSimulation() {
		t.Error("expected real mode after SwitchToReal")
	}
}

// TestGetCurrentConfigReturnsCopy verifies callers cannot mutate factory state
func TestGetCurrentConfigReturnsCopy(t *testing.T) {
	factory := NewCollaboratorFactory()
	if err := factory.UpdateConfig(&interfaces.CollaboratorConfig{
		InterpolatorCommand:   []string{"worker"},
		InterpolatorTimeoutMs: 1000,
	}); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	config := factory.GetCurrentConfig()
	config.InterpolatorTimeoutMs = 99999
	config.InterpolatorCommand[0] = "changed"

	again := factory.GetCurrentConfig()
	if again.InterpolatorTimeoutMs != 1000 {
		t.Errorf("expected InterpolatorTimeoutMs 1000, got %d", again.InterpolatorTimeoutMs)
	}
	if again.InterpolatorCommand[0] != "worker" {
		t.Errorf("expected command to be copied, got %q", again.InterpolatorCommand[0])
	}
}

// TestUpdateConfig verifies nil and invalid configurations are rejected
func TestUpdateConfig(t *testing.T) {
	factory := NewCollaboratorFactory()

	if err := factory.UpdateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if err := factory.UpdateConfig(&interfaces.CollaboratorConfig{InterpolatorTimeoutMs: -1}); err == nil {
		t.Error("expected error for negative timeout")
	}

	err := factory.UpdateConfig(&interfaces.CollaboratorConfig{
		UseSimulation:         true,
		InterpolatorTimeoutMs: 15000,
		Device:                interfaces.DeviceOpenCL,
	})
	if err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	config := factory.GetCurrentConfig()
	if !config.UseSimulation {
		t.Errorf("expected UseSimulation true, got %v", config.UseSimulation)
	}
	if config.InterpolatorTimeoutMs != 15000 {
		t.Errorf("expected InterpolatorTimeoutMs 15000, got %d", config.InterpolatorTimeoutMs)
	}
	if config.Device != interfaces.DeviceOpenCL {
		t.Errorf("expected Device opencl, got %v", config.Device)
	}
}

// TestNewCollaboratorFactoryWithConfig verifies environment overrides apply on top of a base config
func TestNewCollaboratorFactoryWithConfig(t *testing.T) {
	t.Setenv("STINX_DEVICE", "opencl")

	base := &interfaces.CollaboratorConfig{
		InterpolatorCommand:   []string{"worker"},
		InterpolatorTimeoutMs: 2500,
	}
	factory := NewCollaboratorFactoryWithConfig(base)
	base.InterpolatorCommand[0] = "changed"

	config := factory.GetCurrentConfig()
	if config.Device != interfaces.DeviceOpenCL {
		t.Errorf("expected Device opencl from environment, got %v", config.Device)
	}
	if config.InterpolatorTimeoutMs != 2500 {
		t.Errorf("expected InterpolatorTimeoutMs 2500, got %d", config.InterpolatorTimeoutMs)
	}
	if config.InterpolatorCommand[0] != "worker" {
		t.Errorf("expected base command to be copied, got %q", config.InterpolatorCommand[0])
	}
}
