package config

import (
	"strconv"

	"toroid/internal/core"
)

// Parameters groups the effective settings for display.
func (c *Config) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Lattice",
			Params: []core.Parameter{
				intParam("width", "Width", c.Width),
				intParam("height", "Height", c.Height),
				floatParam("alive_probability", "Alive probability", c.AliveProbability),
				int64Param("seed", "Seed", c.Seed),
			},
		},
		{
			Name: "Simulation",
			Params: []core.Parameter{
				intParam("window", "Convergence window", c.Window),
				intParam("max_steps", "Max steps", c.MaxSteps),
				boolParam("break_on_convergence", "Break on convergence", c.BreakOnConvergence),
				intParam("runs", "Batch runs", c.Runs),
				intParam("workers", "Workers", c.Workers),
			},
		},
		{
			Name:    "Classifier",
			Summary: "Empirical thresholds; a verdict is a heuristic, not a proof of convergence.",
			Params: []core.Parameter{
				stringParam("policy", "Constant policy", c.Classifier.Policy),
				floatParam("constant_tolerance", "Constant tolerance", c.Classifier.ConstantTolerance),
				floatParam("oscillation_threshold", "Oscillation threshold", c.Classifier.OscillationThreshold),
				floatParam("batch_tolerance", "Batch variance tolerance", c.Classifier.BatchTolerance),
				floatParam("torque_tolerance", "Torque match tolerance", c.Catalog.TorqueTolerance),
			},
		},
		{
			Name: "Output",
			Params: []core.Parameter{
				stringParam("log_level", "Log level", c.Logging.Level),
				stringParam("store_backend", "Store backend", c.Store.Backend),
				stringParam("store_path", "Store path", c.Store.Path),
			},
		},
	}}
}

func intParam(key, label string, v int) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.Itoa(v)}
}

func int64Param(key, label string, v int64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.FormatInt(v, 10)}
}

func floatParam(key, label string, v float64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeFloat, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

func boolParam(key, label string, v bool) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeBool, Value: strconv.FormatBool(v)}
}

func stringParam(key, label, v string) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeString, Value: v}
}
