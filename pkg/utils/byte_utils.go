package utils

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// IP type constants
const (
	IPV4 = 4
	IPV6 = 6
)

// GetUint32 从字节数组中指定位置读取一个32位无符号整数（大端序）
func GetUint32(b []byte, offset int) (uint32, bool) {
	if offset < 0 || offset+4 > len(b) {
		return 0, false
	}
	return binary.BigEndian.Uint32(b[offset:]), true
}

// GetUint16 从字节数组中指定位置读取一个16位无符号整数（大端序）
func GetUint16(b []byte, offset int) (uint16, bool) {
	if offset < 0 || offset+2 > len(b) {
		return 0, false
	}
	return binary.BigEndian.Uint16(b[offset:]), true
}

// GetByte 从字节数组中指定位置读取一个字节
func GetByte(b []byte, offset int) (byte, bool) {
	if offset < 0 || offset >= len(b) {
		return 0, false
	}
	return b[offset], true
}

// GetIPBytes converts an IP string to the bytes walked by the trie:
// 4 bytes for dotted IPv4, 16 bytes for everything else. IPv4-mapped
// IPv6 text stays 16 bytes. Zoned addresses are rejected.
func GetIPBytes(ip string) ([]byte, int, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid IP address format: %q", ip)
	}
	if addr.Zone() != "" {
		return nil, 0, fmt.Errorf("zoned IP address not supported: %q", ip)
	}
	if addr.Is4() {
		b := addr.As4()
		return b[:], IPV4, nil
	}
	b := addr.As16()
	return b[:], IPV6, nil
}

// BitAt returns bit i of ip, counting from the most significant bit of ip[0].
func BitAt(ip []byte, i int) int {
	return int(ip[i>>3]>>(7-uint(i&7))) & 1
}
