// Package console implements the console reporter.
// Outputs one line per packet, as colored text or JSON.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/mitchellh/mapstructure"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/log"
	"firestige.xyz/tagger/pkg/plugin"
)

// ConsoleReporter writes packets to stdout or stderr.
type ConsoleReporter struct {
	name          string
	config        Config
	out           io.Writer
	reportedCount atomic.Uint64

	family   *color.Color
	role     *color.Color
	line     *color.Color
	untagged *color.Color
}

// Config represents console reporter configuration.
type Config struct {
	Format string `mapstructure:"format"` // "json" or "text", default "text"
	Output string `mapstructure:"output"` // "stdout" or "stderr", default "stdout"
	Color  *bool  `mapstructure:"color"`  // force colors on or off, unset follows the terminal
	Labels bool   `mapstructure:"labels"` // append labels in text mode
}

// NewConsoleReporter creates a new console reporter.
func NewConsoleReporter() plugin.Reporter {
	return &ConsoleReporter{
		name:     "console",
		config:   Config{Format: "text", Output: "stdout"},
		out:      os.Stdout,
		family:   color.New(color.FgCyan, color.Bold),
		role:     color.New(color.FgYellow),
		line:     color.New(color.FgGreen),
		untagged: color.New(color.Faint),
	}
}

// Name returns the plugin name.
func (r *ConsoleReporter) Name() string {
	return r.name
}

// Init initializes the reporter with configuration.
func (r *ConsoleReporter) Init(cfg map[string]any) error {
	if cfg == nil {
		return nil
	}

	if err := mapstructure.Decode(cfg, &r.config); err != nil {
		return fmt.Errorf("%w: console reporter: %w", core.ErrConfigInvalid, err)
	}

	switch r.config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: console reporter: invalid format %q, must be json or text",
			core.ErrConfigInvalid, r.config.Format)
	}

	switch r.config.Output {
	case "stdout":
		r.out = os.Stdout
	case "stderr":
		r.out = os.Stderr
	default:
		return fmt.Errorf("%w: console reporter: invalid output %q, must be stdout or stderr",
			core.ErrConfigInvalid, r.config.Output)
	}

	if r.config.Color != nil {
		for _, c := range []*color.Color{r.family, r.role, r.line, r.untagged} {
			if *r.config.Color {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
	return nil
}

// Start starts the reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	log.GetLogger().WithField("format", r.config.Format).Debug("console reporter started")
	return nil
}

// Stop stops the reporter.
func (r *ConsoleReporter) Stop(ctx context.Context) error {
	log.GetLogger().WithField("total_reported", r.reportedCount.Load()).Debug("console reporter stopped")
	return nil
}

// Report outputs a packet.
func (r *ConsoleReporter) Report(ctx context.Context, pkt *core.TaggedPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}

	r.reportedCount.Add(1)

	if r.config.Format == "json" {
		return r.reportJSON(pkt)
	}
	return r.reportText(pkt)
}

// reportJSON outputs the packet as one JSON object per line.
func (r *ConsoleReporter) reportJSON(pkt *core.TaggedPacket) error {
	output := map[string]any{
		"frame":       pkt.Frame,
		"timestamp":   pkt.Timestamp.Format(time.RFC3339Nano),
		"transport":   pkt.Transport.String(),
		"src_ip":      addr(pkt.SrcIP.String()),
		"dst_ip":      addr(pkt.DstIP.String()),
		"src_port":    pkt.SrcPort,
		"dst_port":    pkt.DstPort,
		"payload_len": len(pkt.Payload),
		"tagged":      pkt.Tag != nil,
	}
	if pkt.Tag != nil {
		output["family"] = pkt.Tag.Family.String()
		output["role"] = pkt.Tag.Role.String()
		output["labels"] = pkt.Labels()
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}

	_, err = fmt.Fprintln(r.out, string(data))
	return err
}

// reportText outputs the packet in human-readable form.
func (r *ConsoleReporter) reportText(pkt *core.TaggedPacket) error {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d [%s] %s %s:%d -> %s:%d",
		pkt.Frame,
		pkt.Timestamp.Format("15:04:05.000000"),
		pkt.Transport,
		addr(pkt.SrcIP.String()), pkt.SrcPort,
		addr(pkt.DstIP.String()), pkt.DstPort,
	)

	if pkt.Tag == nil {
		b.WriteString(" " + r.untagged.Sprint("untagged"))
	} else {
		fmt.Fprintf(&b, " %s/%s %s",
			r.family.Sprint(pkt.Tag.Family),
			r.role.Sprint(pkt.Tag.Role),
			r.line.Sprintf("%q", strings.TrimRight(pkt.Tag.Fields.Line(), "\r\n")),
		)
		if r.config.Labels {
			fmt.Fprintf(&b, " labels=%v", pkt.Labels())
		}
	}

	_, err := fmt.Fprintln(r.out, b.String())
	return err
}

// Flush is a no-op since every line is written immediately.
func (r *ConsoleReporter) Flush(ctx context.Context) error {
	return nil
}

func addr(s string) string {
	if s == "invalid IP" {
		return "-"
	}
	return s
}
