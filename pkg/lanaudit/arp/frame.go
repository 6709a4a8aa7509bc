package arp

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// EthernetBroadcast is the destination of every request frame.
var EthernetBroadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// requestFrame serializes an Ethernet broadcast frame carrying a
// who-has dstIP request from srcMAC/srcIP.
func requestFrame(srcMAC net.HardwareAddr, srcIP, dstIP net.IP) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       EthernetBroadcast,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: []byte(srcIP.To4()),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte(dstIP.To4()),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeReply extracts the sender of an ARP reply frame. requester, when
// set, must be the protocol address the reply is addressed to.
func decodeReply(data []byte, requester net.IP) (Reply, bool) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)
	arpLayer := packet.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		return Reply{}, false
	}
	arp := arpLayer.(*layers.ARP)

	// We only care about replies (Operation 2)
	if arp.Operation != layers.ARPReply {
		return Reply{}, false
	}
	if len(arp.SourceProtAddress) != 4 || len(arp.SourceHwAddress) != 6 {
		return Reply{}, false
	}
	if requester != nil && !net.IP(arp.DstProtAddress).Equal(requester) {
		return Reply{}, false
	}

	ip := make(net.IP, 4)
	copy(ip, arp.SourceProtAddress)
	mac := make(net.HardwareAddr, 6)
	copy(mac, arp.SourceHwAddress)
	return Reply{IP: ip, MAC: mac}, true
}
