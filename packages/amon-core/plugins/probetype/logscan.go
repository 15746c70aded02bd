package probetype

import (
	"fmt"
	"regexp"
)

// LogScan tails a log file inside the tenant sandbox and fires an event
// when a line matches a regex at least `threshold` times within `period`
// seconds. It runs in the tenant sandbox, not the global zone.
type LogScan struct{}

func (LogScan) RunInGlobal() bool { return false }

func (LogScan) ValidateConfig(config map[string]any) error {
	path, _ := config["path"].(string)
	if path == "" {
		return fmt.Errorf("logscan: config.path is required")
	}
	regex, _ := config["regex"].(string)
	if regex == "" {
		return fmt.Errorf("logscan: config.regex is required")
	}
	if _, err := regexp.Compile(regex); err != nil {
		return fmt.Errorf("logscan: config.regex is not a valid regular expression: %w", err)
	}
	threshold, ok := numericField(config["threshold"])
	if !ok || threshold < 1 {
		return fmt.Errorf("logscan: config.threshold must be a positive number")
	}
	period, ok := numericField(config["period"])
	if !ok || period < 1 {
		return fmt.Errorf("logscan: config.period must be a positive number of seconds")
	}
	return nil
}

// NewInstance returns a stub Instance — actually tailing a file and
// matching lines is the concrete probe-implementation surface spec.md §1
// places out of scope; this core only has to satisfy the plugin contract.
func (LogScan) NewInstance(config map[string]any, ctx Context) (Instance, error) {
	return &logScanInstance{config: config, ctx: ctx}, nil
}

type logScanInstance struct {
	config map[string]any
	ctx    Context
}

func (i *logScanInstance) Start() error { return nil }
func (i *logScanInstance) Stop()        {}

// numericField accepts either a float64 (the shape config arrives in once
// decoded from JSON) or an int, since config may also be constructed
// programmatically in tests.
func numericField(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
