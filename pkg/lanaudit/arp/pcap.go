package arp

import (
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

const (
	snapLen = 65536
	// readTimeout bounds a single blocking read so the collector can notice
	// the end of the window.
	readTimeout = 50 * time.Millisecond
)

// pcapConn adapts *pcap.Handle to PacketConn.
type pcapConn struct {
	*pcap.Handle
}

func (c pcapConn) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := c.Handle.ReadPacketData()
	if err == pcap.NextErrorTimeoutExpired {
		return nil, ci, ErrReadTimeout
	}
	return data, ci, err
}

// OpenPcap opens iface with libpcap and filters for ARP traffic.
func OpenPcap(iface string) (PacketConn, error) {
	handle, err := pcap.OpenLive(iface, snapLen, false, readTimeout)
	if err != nil {
		return nil, err
	}
	if err := handle.SetBPFFilter("arp"); err != nil {
		handle.Close()
		return nil, err
	}
	return pcapConn{handle}, nil
}
