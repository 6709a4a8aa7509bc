package arp

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var (
	testLocalMAC = net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	testLocalIP  = net.IPv4(192, 168, 1, 50).To4()
)

// replyFrame builds an "ip is-at mac" reply addressed to the test host.
func replyFrame(t testing.TB, mac net.HardwareAddr, ip net.IP, op uint16) []byte {
	t.Helper()
	eth := layers.Ethernet{
		SrcMAC:       mac,
		DstMAC:       testLocalMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         op,
		SourceHwAddress:   []byte(mac),
		SourceProtAddress: []byte(ip.To4()),
		DstHwAddress:      []byte(testLocalMAC),
		DstProtAddress:    []byte(testLocalIP),
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		t.Fatalf("serialize reply: %v", err)
	}
	return buf.Bytes()
}

func TestRequestFrame(t *testing.T) {
	dst := net.ParseIP("192.168.1.10")
	data, err := requestFrame(testLocalMAC, testLocalIP, dst)
	if err != nil {
		t.Fatalf("requestFrame failed: %v", err)
	}

	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		t.Fatal("no Ethernet layer")
	}
	eth := ethLayer.(*layers.Ethernet)
	if eth.DstMAC.String() != "ff:ff:ff:ff:ff:ff" {
		t.Errorf("expected broadcast destination, got %s", eth.DstMAC)
	}
	if eth.EthernetType != layers.EthernetTypeARP {
		t.Errorf("expected ARP ethertype, got %v", eth.EthernetType)
	}

	arpLayer := packet.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		t.Fatal("no ARP layer")
	}
	arp := arpLayer.(*layers.ARP)
	if arp.Operation != layers.ARPRequest {
		t.Errorf("expected request, got op %d", arp.Operation)
	}
	if !net.IP(arp.DstProtAddress).Equal(dst) {
		t.Errorf("expected target %s, got %s", dst, net.IP(arp.DstProtAddress))
	}
	if !net.IP(arp.SourceProtAddress).Equal(testLocalIP) {
		t.Errorf("expected sender %s, got %s", testLocalIP, net.IP(arp.SourceProtAddress))
	}
	if net.HardwareAddr(arp.SourceHwAddress).String() != testLocalMAC.String() {
		t.Errorf("unexpected sender MAC %s", net.HardwareAddr(arp.SourceHwAddress))
	}
}

func TestDecodeReply(t *testing.T) {
	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x11, 0x22, 0x33}
	ip := net.ParseIP("192.168.1.10")

	reply, ok := decodeReply(replyFrame(t, mac, ip, layers.ARPReply), testLocalIP)
	if !ok {
		t.Fatal("expected reply to decode")
	}
	if !reply.IP.Equal(ip) {
		t.Errorf("expected IP %s, got %s", ip, reply.IP)
	}
	if reply.MAC.String() != "aa:bb:cc:11:22:33" {
		t.Errorf("expected MAC aa:bb:cc:11:22:33, got %s", reply.MAC)
	}
}

func TestDecodeReply_Rejects(t *testing.T) {
	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x11, 0x22, 0x33}
	ip := net.ParseIP("192.168.1.10")

	tests := []struct {
		name      string
		data      []byte
		requester net.IP
	}{
		{"request", replyFrame(t, mac, ip, layers.ARPRequest), testLocalIP},
		{"other requester", replyFrame(t, mac, ip, layers.ARPReply), net.ParseIP("192.168.1.99")},
		{"garbage", []byte{0x01, 0x02, 0x03}, nil},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := decodeReply(tt.data, tt.requester); ok {
				t.Errorf("expected %s to be rejected", tt.name)
			}
		})
	}
}

func BenchmarkRequestFrame(b *testing.B) {
	dst := net.ParseIP("192.168.1.10")
	for i := 0; i < b.N; i++ {
		_, _ = requestFrame(testLocalMAC, testLocalIP, dst)
	}
}
