// Package plugins registers all built-in plugins.
package plugins

import (
	"firestige.xyz/tagger/pkg/plugin"
	"firestige.xyz/tagger/plugins/reporter/console"
	"firestige.xyz/tagger/plugins/reporter/summary"
)

func init() {
	// Register reporter plugins
	plugin.RegisterReporter("console", console.NewConsoleReporter)
	plugin.RegisterReporter("summary", summary.NewSummaryReporter)
}
