package cloudinit

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Guest paths of the transparent proxy.
const (
	TransocksBinaryPath = "/usr/local/bin/transocks"
	TransocksConfigPath = "/etc/transocks.toml"
	TransocksUnitPath   = "/etc/systemd/system/transocks.service"
)

// ReservedBypassCIDRs are never sent through the relay.
var ReservedBypassCIDRs = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"224.0.0.0/4",
	"240.0.0.0/4",
}

const transocksUnit = `[Unit]
Description=transocks: Transparent SOCKS5 proxy
Documentation=https://github.com/cybozu-go/transocks
After=network.target

[Service]
ExecStart=/usr/local/bin/transocks

[Install]
WantedBy=multi-user.target
`

func (s *Synthesizer) transocksConfig() string {
	return fmt.Sprintf("listen = \"localhost:%d\"\nproxy_url = %q\n", s.cfg.ListenPort, s.cfg.ProxyURL)
}

// relayProxy returns the relay as a proxy URL that resolves hostnames on the
// relay side, for tools that must reach the internet before transocks runs.
func (s *Synthesizer) relayProxy() string {
	u, err := url.Parse(s.cfg.ProxyURL)
	if err != nil || u.Host == "" {
		return s.cfg.ProxyURL
	}
	return "socks5h://" + u.Host
}

// ValidateBypassCIDRs checks that every entry is an IPv4 CIDR.
func ValidateBypassCIDRs(cidrs []string) error {
	for _, cidr := range cidrs {
		ip, _, err := net.ParseCIDR(cidr)
		if err != nil {
			return fmt.Errorf("invalid bypass CIDR %q: %w", cidr, err)
		}
		if ip.To4() == nil {
			return fmt.Errorf("invalid bypass CIDR %q: not IPv4", cidr)
		}
	}
	return nil
}

// bypassCIDRs returns the reserved ranges followed by the configured ones.
// Configured ranges overlapping an earlier entry are dropped, since nftables
// rejects overlapping intervals in one set.
func (s *Synthesizer) bypassCIDRs() []string {
	out := make([]string, 0, len(ReservedBypassCIDRs)+len(s.cfg.BypassCIDRs))
	out = append(out, ReservedBypassCIDRs...)
	for _, cidr := range s.cfg.BypassCIDRs {
		overlaps := false
		for _, existing := range out {
			if subnetsOverlap(existing, cidr) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			out = append(out, cidr)
		}
	}
	return out
}

func subnetsOverlap(subnet1, subnet2 string) bool {
	_, ipNet1, err := net.ParseCIDR(subnet1)
	if err != nil {
		return false
	}
	_, ipNet2, err := net.ParseCIDR(subnet2)
	if err != nil {
		return false
	}
	return ipNet1.Contains(ipNet2.IP) || ipNet2.Contains(ipNet1.IP)
}

// iptablesNAT renders the TRANSOCKS nat chain in iptables-restore format.
// flush is set when the file replaces a ruleset rather than extending one.
func (s *Synthesizer) iptablesNAT(flush bool) string {
	var b strings.Builder
	b.WriteString("*nat\n")
	if flush {
		b.WriteString("-F\n")
	}
	b.WriteString("\n")
	b.WriteString(":PREROUTING ACCEPT [0:0]\n")
	b.WriteString(":INPUT ACCEPT [0:0]\n")
	b.WriteString(":OUTPUT ACCEPT [0:0]\n")
	b.WriteString(":POSTROUTING ACCEPT [0:0]\n")
	b.WriteString(":TRANSOCKS - [0:0]\n")
	b.WriteString("-A OUTPUT -j TRANSOCKS\n")
	for _, cidr := range s.bypassCIDRs() {
		fmt.Fprintf(&b, "-A TRANSOCKS -d %s -j RETURN\n", cidr)
	}
	fmt.Fprintf(&b, "-A TRANSOCKS -p tcp -j REDIRECT --to-ports %d\n", s.cfg.ListenPort)
	b.WriteString("\nCOMMIT\n")
	return b.String()
}

// nftablesNAT renders the same redirect as an nftables ruleset.
func (s *Synthesizer) nftablesNAT() string {
	var b strings.Builder
	b.WriteString("#!/usr/sbin/nft -f\n\n")
	b.WriteString("flush ruleset\n\n")
	b.WriteString("table ip transocks {\n")
	b.WriteString("\tchain output {\n")
	b.WriteString("\t\ttype nat hook output priority -100; policy accept;\n")
	fmt.Fprintf(&b, "\t\tip daddr { %s } return\n", strings.Join(s.bypassCIDRs(), ", "))
	fmt.Fprintf(&b, "\t\tmeta l4proto tcp redirect to :%d\n", s.cfg.ListenPort)
	b.WriteString("\t}\n")
	b.WriteString("}\n")
	return b.String()
}
