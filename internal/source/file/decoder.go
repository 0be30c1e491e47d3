package file

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/tagger/internal/core"
)

// Link types carrying bare IP datagrams.
const (
	linkTypeIPv4 layers.LinkType = 228
	linkTypeIPv6 layers.LinkType = 229
)

// decoder turns link-layer frames into packets. It reuses its layers
// between calls and is not safe for concurrent use.
type decoder struct {
	eth   layers.Ethernet
	dot1q layers.Dot1Q
	ip4   layers.IPv4
	ip6   layers.IPv6
	tcp   layers.TCP
	udp   layers.UDP

	// raw link types carry either family; the parser is picked per frame.
	parser   *gopacket.DecodingLayerParser
	parser4  *gopacket.DecodingLayerParser
	parser6  *gopacket.DecodingLayerParser
	rawIP    bool
	decoded  []gopacket.LayerType
	linkType layers.LinkType
}

func newDecoder(linkType layers.LinkType) (*decoder, error) {
	d := &decoder{linkType: linkType}
	dls := []gopacket.DecodingLayer{&d.eth, &d.dot1q, &d.ip4, &d.ip6, &d.tcp, &d.udp}

	switch linkType {
	case layers.LinkTypeEthernet:
		d.parser = newParser(layers.LayerTypeEthernet, dls)
	case layers.LinkTypeRaw, linkTypeIPv4, linkTypeIPv6:
		d.rawIP = true
		d.parser4 = newParser(layers.LayerTypeIPv4, dls)
		d.parser6 = newParser(layers.LayerTypeIPv6, dls)
	default:
		return nil, fmt.Errorf("%w: %s (%d)", core.ErrUnsupportedLinkType, linkType, linkType)
	}
	return d, nil
}

func newParser(first gopacket.LayerType, dls []gopacket.DecodingLayer) *gopacket.DecodingLayerParser {
	p := gopacket.NewDecodingLayerParser(first, dls...)
	p.IgnoreUnsupported = true
	return p
}

// decode fills pkt from frame. It reports false for frames that carry no
// unfragmented TCP or UDP segment.
func (d *decoder) decode(frame []byte, pkt *core.Packet) bool {
	parser := d.parser
	if d.rawIP {
		if len(frame) == 0 {
			return false
		}
		switch frame[0] >> 4 {
		case 4:
			parser = d.parser4
		case 6:
			parser = d.parser6
		default:
			return false
		}
	}

	d.decoded = d.decoded[:0]
	if err := parser.DecodeLayers(frame, &d.decoded); err != nil {
		return false
	}

	var haveIP bool
	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			if d.ip4.Flags&layers.IPv4MoreFragments != 0 || d.ip4.FragOffset != 0 {
				return false
			}
			haveIP = setAddrs(pkt, d.ip4.SrcIP, d.ip4.DstIP)
		case layers.LayerTypeIPv6:
			haveIP = setAddrs(pkt, d.ip6.SrcIP, d.ip6.DstIP)
		case layers.LayerTypeTCP:
			pkt.Transport = core.TransportTCP
			pkt.SrcPort = int(d.tcp.SrcPort)
			pkt.DstPort = int(d.tcp.DstPort)
			pkt.Payload = clone(d.tcp.Payload)
			return haveIP
		case layers.LayerTypeUDP:
			pkt.Transport = core.TransportUDP
			pkt.SrcPort = int(d.udp.SrcPort)
			pkt.DstPort = int(d.udp.DstPort)
			pkt.Payload = clone(d.udp.Payload)
			return haveIP
		}
	}
	return false
}

func setAddrs(pkt *core.Packet, src, dst net.IP) bool {
	var ok1, ok2 bool
	pkt.SrcIP, ok1 = netip.AddrFromSlice(src)
	pkt.DstIP, ok2 = netip.AddrFromSlice(dst)
	return ok1 && ok2
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
