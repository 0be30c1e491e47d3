// Package pcaptest builds capture files and canned sessions for tests.
package pcaptest

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/tagger/internal/core"
)

var (
	ClientIP = netip.MustParseAddr("192.168.1.10")
	ServerIP = netip.MustParseAddr("192.168.1.20")

	clientMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	serverMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xaa}

	epoch = time.Date(2014, 3, 1, 12, 0, 0, 0, time.UTC)
)

// TCP builds a TCP packet. Packets toward a port below 1024 come from the
// client address, the rest from the server address.
func TCP(src, dst int, payload string) core.Packet {
	pkt := core.Packet{
		Transport: core.TransportTCP,
		SrcIP:     ClientIP,
		DstIP:     ServerIP,
		SrcPort:   src,
		DstPort:   dst,
	}
	if payload != "" {
		pkt.Payload = []byte(payload)
	}
	if src < 1024 && dst >= 1024 {
		pkt.SrcIP, pkt.DstIP = ServerIP, ClientIP
	}
	return pkt
}

// UDP builds a UDP packet.
func UDP(src, dst int, payload string) core.Packet {
	pkt := TCP(src, dst, payload)
	pkt.Transport = core.TransportUDP
	return pkt
}

// Frame serializes pkt into an Ethernet/IPv4 frame.
func Frame(tb testing.TB, pkt core.Packet) []byte {
	tb.Helper()

	srcMAC, dstMAC := clientMAC, serverMAC
	if pkt.SrcIP == ServerIP {
		srcMAC, dstMAC = serverMAC, clientMAC
	}
	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{
		Version: 4,
		TTL:     64,
		SrcIP:   pkt.SrcIP.AsSlice(),
		DstIP:   pkt.DstIP.AsSlice(),
	}

	stack := []gopacket.SerializableLayer{eth, ip}
	switch pkt.Transport {
	case core.TransportUDP:
		ip.Protocol = layers.IPProtocolUDP
		udp := &layers.UDP{SrcPort: layers.UDPPort(pkt.SrcPort), DstPort: layers.UDPPort(pkt.DstPort)}
		if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
			tb.Fatalf("set network layer: %v", err)
		}
		stack = append(stack, udp)
	default:
		ip.Protocol = layers.IPProtocolTCP
		tcp := &layers.TCP{
			SrcPort: layers.TCPPort(pkt.SrcPort),
			DstPort: layers.TCPPort(pkt.DstPort),
			Seq:     1,
			ACK:     true,
			PSH:     len(pkt.Payload) > 0,
			Window:  65535,
		}
		if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
			tb.Fatalf("set network layer: %v", err)
		}
		stack = append(stack, tcp)
	}
	if len(pkt.Payload) > 0 {
		stack = append(stack, gopacket.Payload(pkt.Payload))
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, stack...); err != nil {
		tb.Fatalf("serialize frame: %v", err)
	}
	return buf.Bytes()
}

// WriteTrace writes pkts as a classic pcap file with Ethernet link type.
func WriteTrace(tb testing.TB, path string, pkts []core.Packet) {
	tb.Helper()
	frames := make([][]byte, len(pkts))
	for i, pkt := range pkts {
		frames[i] = Frame(tb, pkt)
	}
	WriteFrames(tb, path, layers.LinkTypeEthernet, frames)
}

// WriteFrames writes raw frames as a classic pcap file.
func WriteFrames(tb testing.TB, path string, linkType layers.LinkType, frames [][]byte) {
	tb.Helper()

	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create trace: %v", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, linkType); err != nil {
		tb.Fatalf("write pcap header: %v", err)
	}
	for i, frame := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     epoch.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		if err := w.WritePacket(ci, frame); err != nil {
			tb.Fatalf("write packet %d: %v", i, err)
		}
	}
}

// WriteNgTrace writes pkts as a pcapng file with Ethernet link type.
func WriteNgTrace(tb testing.TB, path string, pkts []core.Packet) {
	tb.Helper()

	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create trace: %v", err)
	}
	defer f.Close()

	w, err := pcapgo.NewNgWriter(f, layers.LinkTypeEthernet)
	if err != nil {
		tb.Fatalf("create pcapng writer: %v", err)
	}
	for i, pkt := range pkts {
		frame := Frame(tb, pkt)
		ci := gopacket.CaptureInfo{
			Timestamp:     epoch.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		if err := w.WritePacket(ci, frame); err != nil {
			tb.Fatalf("write packet %d: %v", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		tb.Fatalf("flush pcapng: %v", err)
	}
}

// SMTPSession is a client session toward port 25 holding 6 command segments
// interleaved with server replies, a message body and bare ACKs.
func SMTPSession() []core.Packet {
	const client = 1470
	return []core.Packet{
		TCP(client, 25, ""),
		TCP(25, client, "220 mail.example.org ESMTP Postfix\r\n"),
		TCP(client, 25, "EHLO client.example.org\r\n"),
		TCP(25, client, "250-mail.example.org\r\n250 8BITMIME\r\n"),
		TCP(client, 25, "MAIL FROM:<alice@example.org>\r\n"),
		TCP(25, client, "250 2.1.0 Ok\r\n"),
		TCP(client, 25, "RCPT TO:<bob@example.org>\r\n"),
		TCP(25, client, "250 2.1.5 Ok\r\n"),
		TCP(client, 25, "RCPT TO:<carol@example.org>\r\n"),
		TCP(25, client, "250 2.1.5 Ok\r\n"),
		TCP(client, 25, "DATA\r\n"),
		TCP(25, client, "354 End data with <CR><LF>.<CR><LF>\r\n"),
		TCP(client, 25, "From: alice@example.org\r\nSubject: hello\r\n\r\nHi Bob.\r\n"),
		TCP(client, 25, ".\r\n"),
		TCP(25, client, "250 2.0.0 Ok: queued\r\n"),
		TCP(client, 25, "QUIT\r\n"),
		TCP(25, client, "221 2.0.0 Bye\r\n"),
		TCP(client, 25, ""),
	}
}

// HTTPSession holds 19 request lines and 18 status lines, plus handshake
// segments, body continuations and one request that never got an answer.
func HTTPSession() []core.Packet {
	var pkts []core.Packet
	for i := range 19 {
		client := 50000 + i
		pkts = append(pkts,
			TCP(client, 80, ""),
			TCP(80, client, ""),
			TCP(client, 80, fmt.Sprintf("GET /page/%d HTTP/1.1\r\nHost: example.org\r\n\r\n", i)),
		)
		if i == 18 {
			continue
		}
		pkts = append(pkts,
			TCP(80, client, "HTTP/1.1 200 OK\r\nContent-Length: 40\r\n\r\n<html>"),
			TCP(80, client, "<body>more of the same document</body></html>\r\n"),
			TCP(client, 80, ""),
		)
	}
	return pkts
}

// FTPSession is a control connection with 2 server replies on port 21.
func FTPSession() []core.Packet {
	const client = 40100
	return []core.Packet{
		TCP(client, 21, ""),
		TCP(21, client, "220 (vsFTPd 3.0.3)\r\n"),
		TCP(client, 21, "USER anonymous\r\n"),
		TCP(21, client, "331 Please specify the password.\r\n"),
		TCP(client, 21, ""),
	}
}
