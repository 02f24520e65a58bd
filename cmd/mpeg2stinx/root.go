package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/mpeg2stinx/config"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/y4m"
)

// runFlags holds flag values; each is applied only when set on the command line.
type runFlags struct {
	configPath string
	output     string

	mode    int
	sw      int
	sh      int
	contra  bool
	blurv   float64
	sstr    float64
	scl     float64
	order   int
	diffscl float64
	bias    string

	interpolator string
	device       string
	timeoutMs    int
	simulation   bool

	logLevel string
	workers  int
	batch    int
}

func newRootCmd() *cobra.Command {
	return newCommand(&runFlags{})
}

func newCommand(flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mpeg2stinx [flags] <input.y4m>",
		Short:         "Remove MPEG-2 field combing from a YUV4MPEG2 stream",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd, cfg, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	f.StringVarP(&flags.output, "output", "o", "-", `output file, "-" for stdout`)

	defaults := config.Default()
	f.IntVar(&flags.mode, "mode", defaults.Filter.Mode, "bob: 0 point, 1 spline36, 2 nnedi3, 3 nnedi3cl")
	f.IntVar(&flags.sw, "sw", defaults.Filter.SW, "horizontal repair radius")
	f.IntVar(&flags.sh, "sh", defaults.Filter.SH, "vertical repair radius")
	f.BoolVar(&flags.contra, "contra", defaults.Filter.Contra, "contra-sharpen against the source")
	f.Float64Var(&flags.blurv, "blurv", 0, "vertical blur strength (default 0.9 with contra, 0 without)")
	f.Float64Var(&flags.sstr, "sstr", defaults.Filter.SStr, "contra-sharpening strength")
	f.Float64Var(&flags.scl, "scl", defaults.Filter.Scl, "contra-sharpening limit scale, 0 for median limiting")
	f.IntVar(&flags.order, "order", defaults.Filter.Order, "motion adaptation: -1 off, 0 progressive, 1 top field first")
	f.Float64Var(&flags.diffscl, "diffscl", 0, "enable the temporal limiter with this scale")
	f.StringVar(&flags.bias, "bias", defaults.Filter.Bias, "difference bias: half-range or legacy")

	f.StringVar(&flags.interpolator, "interpolator", "", "field interpolator worker command line")
	f.StringVar(&flags.device, "device", defaults.Interpolator.Device, "interpolator device: cpu or opencl")
	f.IntVar(&flags.timeoutMs, "interpolator-timeout", defaults.Interpolator.TimeoutMs, "worker round trip timeout in milliseconds")
	f.BoolVar(&flags.simulation, "simulation", false, "use simulated interpolation and motion adaptation")

	f.StringVar(&flags.logLevel, "log-level", defaults.LogLevel, "trace, debug, info, warn or error")
	f.IntVar(&flags.workers, "workers", defaults.Workers, "concurrent dependency fetches per stage, 0 for unlimited")
	f.IntVar(&flags.batch, "batch", 0, "frames rendered concurrently (default number of CPUs)")

	return cmd
}

// loadConfig layers defaults, the config file, environment overrides and
// explicitly set flags, then validates the result.
func loadConfig(cmd *cobra.Command, flags *runFlags) (*config.File, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.ApplyEnvironmentOverrides(cfg)

	changed := cmd.Flags().Changed
	if changed("mode") {
		cfg.Filter.Mode = flags.mode
	}
	if changed("sw") {
		cfg.Filter.SW = flags.sw
	}
	if changed("sh") {
		cfg.Filter.SH = flags.sh
	}
	if changed("contra") {
		cfg.Filter.Contra = flags.contra
	}
	if changed("blurv") {
		cfg.Filter.BlurV = &flags.blurv
	}
	if changed("sstr") {
		cfg.Filter.SStr = flags.sstr
	}
	if changed("scl") {
		cfg.Filter.Scl = flags.scl
	}
	if changed("order") {
		cfg.Filter.Order = flags.order
	}
	if changed("diffscl") {
		cfg.Filter.DiffScl = &flags.diffscl
	}
	if changed("bias") {
		cfg.Filter.Bias = flags.bias
	}
	if changed("interpolator") {
		cfg.Interpolator.Command = strings.Fields(flags.interpolator)
	}
	if changed("device") {
		cfg.Interpolator.Device = flags.device
	}
	if changed("interpolator-timeout") {
		cfg.Interpolator.TimeoutMs = flags.timeoutMs
	}
	if changed("simulation") {
		cfg.Interpolator.Simulation = flags.simulation
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// collaboratorConfig returns the interpolator settings with flags taking
// precedence over the environment overrides the factory applies.
func collaboratorConfig(cmd *cobra.Command, cfg *config.File, current *interfaces.CollaboratorConfig) (*interfaces.CollaboratorConfig, error) {
	fromFlags, err := cfg.CollaboratorConfig()
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("interpolator") {
		current.InterpolatorCommand = fromFlags.InterpolatorCommand
	}
	if changed("device") {
		current.Device = fromFlags.Device
	}
	if changed("interpolator-timeout") {
		current.InterpolatorTimeoutMs = fromFlags.InterpolatorTimeoutMs
	}
	if changed("simulation") {
		current.UseSimulation = fromFlags.UseSimulation
	}
	return current, nil
}

// openInput indexes the input stream. Standard input is buffered in memory
// so that frames can be read at random.
func openInput(path string, stdin io.Reader) (*y4m.Clip, io.Closer, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		clip, err := y4m.NewClip("stdin", bytes.NewReader(data), int64(len(data)))
		return clip, io.NopCloser(stdin), err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	clip, err := y4m.NewClip(path, file, stat.Size())
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return clip, file, nil
}

func setLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	return nil
}
