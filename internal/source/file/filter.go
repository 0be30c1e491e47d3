package file

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"golang.org/x/net/bpf"

	"firestige.xyz/tagger/internal/core"
)

const (
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86dd

	// Offsets into an untagged Ethernet frame.
	offEtherType = 12
	offIPv4      = 14
	offIPv4Proto = offIPv4 + 9
	offIPv4Frag  = offIPv4 + 6
	offIPv4Src   = offIPv4 + 12
	offIPv4Dst   = offIPv4 + 16

	snapLen = 262144
)

var (
	retDrop   = bpf.RetConstant{Val: 0}
	retAccept = bpf.RetConstant{Val: snapLen}
)

// Filter is a compiled pre-filter run against raw Ethernet frames.
// It understands a single tcpdump primitive: ip, ip6, host ADDR,
// src [host] ADDR, dst [host] ADDR or port N. Address and port primitives
// match IPv4 only.
type Filter struct {
	expr string
	vm   *bpf.VM
}

// CompileFilter compiles expr. An empty expression yields a nil filter
// that accepts everything.
func CompileFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" {
		return nil, nil
	}

	prog, err := compile(strings.Fields(expr))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", core.ErrInvalidFilter, expr, err)
	}
	vm, err := bpf.NewVM(prog)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", core.ErrInvalidFilter, expr, err)
	}
	return &Filter{expr: expr, vm: vm}, nil
}

// String returns the normalized expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match reports whether frame passes the filter. A nil filter matches all.
func (f *Filter) Match(frame []byte) bool {
	if f == nil {
		return true
	}
	n, err := f.vm.Run(frame)
	return err == nil && n > 0
}

func compile(tokens []string) ([]bpf.Instruction, error) {
	switch {
	case len(tokens) == 1 && tokens[0] == "ip":
		return etherTypeProgram(etherTypeIPv4), nil
	case len(tokens) == 1 && tokens[0] == "ip6":
		return etherTypeProgram(etherTypeIPv6), nil
	case len(tokens) == 2 && tokens[0] == "port":
		port, err := strconv.Atoi(tokens[1])
		if err != nil || port < 0 || port > core.MaxPort {
			return nil, fmt.Errorf("bad port %q", tokens[1])
		}
		return portProgram(uint32(port)), nil
	}

	// host|src|dst [host] ADDR
	if len(tokens) == 3 && tokens[1] == "host" && (tokens[0] == "src" || tokens[0] == "dst") {
		tokens = []string{tokens[0], tokens[2]}
	}
	if len(tokens) != 2 {
		return nil, errors.New("unsupported expression")
	}
	addr, err := netip.ParseAddr(tokens[1])
	if err != nil || !addr.Is4() {
		return nil, fmt.Errorf("bad IPv4 address %q", tokens[1])
	}
	b := addr.As4()
	ip := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])

	switch tokens[0] {
	case "host":
		return hostProgram(ip), nil
	case "src":
		return addrProgram(offIPv4Src, ip), nil
	case "dst":
		return addrProgram(offIPv4Dst, ip), nil
	}
	return nil, fmt.Errorf("unknown primitive %q", tokens[0])
}

func etherTypeProgram(etherType uint32) []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherType, SkipFalse: 1},
		retAccept,
		retDrop,
	}
}

func addrProgram(off, ip uint32) []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: etherTypeIPv4, SkipTrue: 2},
		bpf.LoadAbsolute{Off: off, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: ip, SkipTrue: 1},
		retDrop,
		retAccept,
	}
}

func hostProgram(ip uint32) []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: etherTypeIPv4, SkipTrue: 4},
		bpf.LoadAbsolute{Off: offIPv4Src, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: ip, SkipTrue: 3},
		bpf.LoadAbsolute{Off: offIPv4Dst, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: ip, SkipTrue: 1},
		retDrop,
		retAccept,
	}
}

// portProgram matches unfragmented IPv4 TCP or UDP with either port equal
// to port. The transport header offset comes from the IHL nibble. Every
// jump lands on one of the two trailing returns.
func portProgram(port uint32) []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: etherTypeIPv4, SkipTrue: 10},
		bpf.LoadAbsolute{Off: offIPv4Proto, Size: 1},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: 6, SkipTrue: 1},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 17, SkipTrue: 7},
		bpf.LoadAbsolute{Off: offIPv4Frag, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpBitsSet, Val: 0x1fff, SkipTrue: 5},
		bpf.LoadMemShift{Off: offIPv4},
		bpf.LoadIndirect{Off: offIPv4, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: port, SkipTrue: 3},
		bpf.LoadIndirect{Off: offIPv4 + 2, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: port, SkipTrue: 1},
		retDrop,
		retAccept,
	}
}
