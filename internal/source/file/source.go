// Package file reads capture files into a replayable packet source.
package file

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/log"
	"firestige.xyz/tagger/pkg/plugin"
)

const pcapngMagic = 0x0a0d0d0a

// Stats counts what happened to the records of a capture file.
type Stats struct {
	Records  int `json:"records" yaml:"records"`
	Packets  int `json:"packets" yaml:"packets"`
	Filtered int `json:"filtered" yaml:"filtered"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

// Option configures Open and Read.
type Option func(*options)

type options struct {
	filter string
	logger log.Logger
}

// WithFilter applies a pre-filter expression to every frame before
// decoding. See CompileFilter for the accepted grammar.
func WithFilter(expr string) Option {
	return func(o *options) {
		o.filter = expr
	}
}

// WithLogger overrides the package logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Source is a capture file decoded into memory. Only records carrying an
// unfragmented TCP or UDP segment become packets; each keeps the 1-based
// record number it had in the file.
type Source struct {
	name     string
	linkType layers.LinkType
	packets  []core.Packet
	stats    Stats
}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Open reads a pcap or pcapng file.
func Open(path string, opts ...Option) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	return Read(filepath.Base(path), f, opts...)
}

// Read decodes a pcap or pcapng stream, told apart by its magic number.
func Read(name string, r io.Reader, opts ...Option) (*Source, error) {
	o := options{logger: log.GetLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.WithField("source", name)

	pr, err := newPacketReader(r)
	if err != nil {
		return nil, fmt.Errorf("read capture %s: %w", name, err)
	}

	s := &Source{name: name, linkType: pr.LinkType()}
	dec, err := newDecoder(s.linkType)
	if err != nil {
		return nil, fmt.Errorf("read capture %s: %w", name, err)
	}
	filter, err := CompileFilter(o.filter)
	if err != nil {
		return nil, err
	}
	if filter != nil && s.linkType != layers.LinkTypeEthernet {
		return nil, fmt.Errorf("%w: filter %q needs ethernet frames, capture has %s",
			core.ErrUnsupportedLinkType, filter, s.linkType)
	}

	for {
		data, ci, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			logger.Warnf("capture truncated after %d records", s.stats.Records)
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read capture %s: record %d: %w", name, s.stats.Records+1, err)
		}
		s.stats.Records++

		if !filter.Match(data) {
			s.stats.Filtered++
			continue
		}
		pkt := core.Packet{Frame: s.stats.Records, Timestamp: ci.Timestamp}
		if !dec.decode(data, &pkt) {
			s.stats.Skipped++
			continue
		}
		s.packets = append(s.packets, pkt)
	}
	s.stats.Packets = len(s.packets)

	logger.WithFields(map[string]interface{}{
		"link_type": s.linkType.String(),
		"records":   s.stats.Records,
		"packets":   s.stats.Packets,
		"filtered":  s.stats.Filtered,
		"skipped":   s.stats.Skipped,
	}).Debug("capture loaded")
	return s, nil
}

func newPacketReader(r io.Reader) (packetReader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	// The section header block type reads the same in either byte order.
	if uint32(magic[0])<<24|uint32(magic[1])<<16|uint32(magic[2])<<8|uint32(magic[3]) == pcapngMagic {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// Name returns the file's base name.
func (s *Source) Name() string {
	return s.name
}

// Len returns the number of decoded packets.
func (s *Source) Len() int {
	return len(s.packets)
}

// Packet returns the i-th decoded packet.
func (s *Source) Packet(i int) core.Packet {
	return s.packets[i]
}

// LinkType returns the capture's link type.
func (s *Source) LinkType() layers.LinkType {
	return s.linkType
}

// Stats returns record counters gathered while reading.
func (s *Source) Stats() Stats {
	return s.stats
}

var _ plugin.Source = (*Source)(nil)
