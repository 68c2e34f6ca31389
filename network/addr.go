// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import (
	"fmt"
	"net"
	"strings"

	"github.com/emitter-io/address"
)

// HostIP 从 "host:port" 或纯主机地址中取出 IP，无法解析时返回 nil
func HostIP(addr string) net.IP {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = strings.Trim(addr, "[]")
	}
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i] // IPv6 zone
	}
	return net.ParseIP(host)
}

// AddrIP returns the IP of a connection address.
func AddrIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP
	case *net.UDPAddr:
		return a.IP
	case nil:
		return nil
	}
	return HostIP(addr.String())
}

// ServerIPs 本机非回环 IPv4 地址，用于服务信息
func ServerIPs() []string {
	addrs, _ := net.InterfaceAddrs()
	ips := []string{}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			ips = append(ips, ipnet.IP.String())
		}
	}
	return ips
}

// IsLocalAddr 判断 "host:port" 是否来自本机或私有网段的本机地址
func IsLocalAddr(addr string) bool {
	ip := HostIP(addr)
	return ip != nil && IsLocalhostIP(ip)
}

// IsLocalhostIP 判断是否为本机IP
func IsLocalhostIP(ip net.IP) bool {
	for _, block := range loopbackBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	privs, err := address.GetPrivate()
	if err != nil {
		return false
	}

	for _, priv := range privs {
		if priv.IP.Equal(ip) {
			return true
		}
	}
	return false
}

var loopbackBlocks = []*net.IPNet{
	mustCIDR("0.0.0.0/8"),
	mustCIDR("127.0.0.0/8"),
	mustCIDR("::1/128"),
}

func mustCIDR(s string) *net.IPNet {
	_, block, err := net.ParseCIDR(s)
	if err != nil {
		panic(fmt.Sprintf("bad CIDR %s: %s", s, err))
	}
	return block
}
