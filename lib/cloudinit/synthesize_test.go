package cloudinit

import (
	"strings"
	"testing"

	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func testRequest(remote images.RemoteKind, alias string) Request {
	return Request{
		Identity:     Identity{Username: "alice", PasswordHash: "$2a$10$hash"},
		Remote:       remote,
		Alias:        alias,
		InstanceType: hypervisor.TypeContainer,
	}
}

func shells(cmds []Command) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.String())
	}
	return out
}

func paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestResolveBranch(t *testing.T) {
	tests := []struct {
		remote images.RemoteKind
		alias  string
		want   Branch
	}{
		{images.RemoteUbuntu, "24.04", BranchCloudDefault},
		{images.RemoteUbuntu, "debian/12", BranchCloudDefault},
		{images.RemoteLinuxContainers, "debian/12/cloud", BranchDebianFamily},
		{images.RemoteLinuxContainers, "archlinux/cloud", BranchArchFamily},
		{images.RemoteLinuxContainers, "alpine/3.20", BranchUnrecognized},
		{images.RemoteLinuxContainers, "", BranchUnrecognized},
	}
	for _, tt := range tests {
		t.Run(string(tt.remote)+":"+tt.alias, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBranch(tt.remote, tt.alias))
		})
	}
}

func TestSynthesizeIdentity(t *testing.T) {
	doc, _ := NewSynthesizer(Config{}).Synthesize(testRequest(images.RemoteUbuntu, "24.04"))

	assert.Equal(t, "alice", doc.SystemInfo.DefaultUser.Name)
	assert.Equal(t, "$2a$10$hash", doc.SystemInfo.DefaultUser.Passwd)
	assert.False(t, doc.SystemInfo.DefaultUser.LockPasswd)
	assert.True(t, doc.SSHPasswordAuth)
}

func TestSynthesizeCloudDefault(t *testing.T) {
	doc, _ := NewSynthesizer(Config{}).Synthesize(testRequest(images.RemoteUbuntu, "24.04"))

	assert.Equal(t, []string{TransocksConfigPath, TransocksUnitPath, "/etc/ufw/before.rules"}, paths(doc.WriteFiles))
	assert.True(t, doc.WriteFiles[2].Append)
	assert.Contains(t, doc.WriteFiles[2].Content, "-A TRANSOCKS -d 130.153.0.0/16 -j RETURN\n")
	assert.Contains(t, doc.WriteFiles[2].Content, "-A TRANSOCKS -p tcp -j REDIRECT --to-ports 1081\n")

	assert.Len(t, doc.BootCmd, 2)
	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable transocks",
		"systemctl start transocks",
		"ufw enable",
		"ufw allow 22",
		"apt update",
		"apt install -y avahi-daemon",
		"ufw allow 5353",
		"systemctl enable avahi-daemon",
		"systemctl start avahi-daemon",
	}, shells(doc.RunCmd))
}

func TestSynthesizeDebianFamily(t *testing.T) {
	doc, _ := NewSynthesizer(Config{}).Synthesize(testRequest(images.RemoteLinuxContainers, "debian/12/cloud"))

	require.Len(t, doc.BootCmd, 3)
	bootstrap := doc.BootCmd[0].Argv
	require.NotEmpty(t, bootstrap)
	assert.Contains(t, bootstrap[len(bootstrap)-1], "install -y curl nftables")
	assert.Contains(t, bootstrap[len(bootstrap)-1], "socks5h://socks.cc.uec.ac.jp:1080")
	assert.Contains(t, doc.BootCmd[1].Argv, "fetch-transocks")

	assert.Equal(t, []string{TransocksConfigPath, TransocksUnitPath, "/etc/nftables.conf"}, paths(doc.WriteFiles))
	assert.Contains(t, doc.WriteFiles[2].Content, "redirect to :1081")

	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable transocks",
		"systemctl start transocks",
		"systemctl enable nftables",
		"systemctl start nftables",
		"apt-get update",
		"apt-get install -y avahi-daemon",
		"systemctl enable avahi-daemon",
		"systemctl start avahi-daemon",
	}, shells(doc.RunCmd))
}

func TestSynthesizeArchFamily(t *testing.T) {
	doc, _ := NewSynthesizer(Config{}).Synthesize(testRequest(images.RemoteLinuxContainers, "archlinux/cloud"))

	require.Len(t, doc.BootCmd, 3)
	assert.Contains(t, doc.BootCmd[0].Argv, "pacman-bootstrap")

	assert.Equal(t, []string{TransocksConfigPath, TransocksUnitPath, "/etc/iptables/iptables.rules"}, paths(doc.WriteFiles))
	assert.NotContains(t, doc.WriteFiles[2].Content, "-F\n")

	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable transocks",
		"systemctl start transocks",
		"systemctl enable iptables",
		"systemctl start iptables",
		"pacman -Sy --noconfirm",
		"pacman -S --noconfirm avahi nss-mdns",
		"systemctl enable avahi-daemon",
		"systemctl start avahi-daemon",
	}, shells(doc.RunCmd))
}

func TestSynthesizeUnrecognized(t *testing.T) {
	doc, _ := NewSynthesizer(Config{}).Synthesize(testRequest(images.RemoteLinuxContainers, "not an alias"))

	assert.Len(t, doc.BootCmd, 2)
	assert.Equal(t, []string{TransocksConfigPath, TransocksUnitPath}, paths(doc.WriteFiles))
	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable transocks",
		"systemctl start transocks",
		"systemctl enable avahi-daemon",
		"systemctl start avahi-daemon",
	}, shells(doc.RunCmd))
}

func TestSynthesizeAvahiIsAlwaysLast(t *testing.T) {
	s := NewSynthesizer(Config{})
	for _, alias := range []string{"24.04", "debian/12", "archlinux", "fedora/40"} {
		for _, remote := range images.AllRemotes {
			doc, _ := s.Synthesize(testRequest(remote, alias))
			n := len(doc.RunCmd)
			require.GreaterOrEqual(t, n, 2)
			assert.Equal(t, "systemctl enable avahi-daemon", doc.RunCmd[n-2].String())
			assert.Equal(t, "systemctl start avahi-daemon", doc.RunCmd[n-1].String())
		}
	}
}

func TestSynthesizeLimits(t *testing.T) {
	s := NewSynthesizer(Config{})

	t.Run("virtual machine", func(t *testing.T) {
		req := testRequest(images.RemoteUbuntu, "24.04")
		req.InstanceType = hypervisor.TypeVirtualMachine
		req.VCPU = intPtr(2)
		req.MemoryMB = intPtr(2048)

		_, limits := s.Synthesize(req)
		assert.Equal(t, Limits{LimitCPU: "2", LimitMemory: "2048MB"}, limits)
	})

	t.Run("virtual machine without values", func(t *testing.T) {
		req := testRequest(images.RemoteUbuntu, "24.04")
		req.InstanceType = hypervisor.TypeVirtualMachine

		_, limits := s.Synthesize(req)
		assert.Empty(t, limits)
	})

	t.Run("container ignores values", func(t *testing.T) {
		req := testRequest(images.RemoteUbuntu, "24.04")
		req.VCPU = intPtr(2)
		req.MemoryMB = intPtr(2048)

		_, limits := s.Synthesize(req)
		assert.Empty(t, limits)
	})
}

func TestSynthesizeCustomConfig(t *testing.T) {
	s := NewSynthesizer(Config{
		ProxyURL:     "socks5://relay.example:1080",
		ListenPort:   12345,
		BypassCIDRs:  []string{"198.51.100.0/24"},
		TransocksURL: "https://files.example/transocks",
	})
	doc, _ := s.Synthesize(testRequest(images.RemoteUbuntu, "24.04"))

	assert.Equal(t, "listen = \"localhost:12345\"\nproxy_url = \"socks5://relay.example:1080\"\n", doc.WriteFiles[0].Content)
	assert.Contains(t, doc.WriteFiles[2].Content, "-A TRANSOCKS -d 198.51.100.0/24 -j RETURN\n")
	assert.NotContains(t, doc.WriteFiles[2].Content, "130.153.0.0/16")
	assert.Contains(t, doc.BootCmd[0].Argv, "https://files.example/transocks")
	assert.Contains(t, doc.BootCmd[0].Argv, "socks5h://relay.example:1080")
}

func TestRender(t *testing.T) {
	doc, _ := NewSynthesizer(Config{}).Synthesize(testRequest(images.RemoteLinuxContainers, "debian/12/cloud"))

	out, err := doc.Render()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "#cloud-config\n"))

	order := []string{"system_info:", "ssh_pwauth:", "bootcmd:", "write_files:", "runcmd:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, "\n"+key)
		require.NotEqual(t, -1, idx, key)
		assert.Greater(t, idx, last, key)
		last = idx
	}

	parsed, err := Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
}

func TestParseRequiresHeader(t *testing.T) {
	_, err := Parse([]byte("ssh_pwauth: true\n"))
	require.Error(t, err)
}

func TestBypassCIDRsDropsOverlaps(t *testing.T) {
	s := NewSynthesizer(Config{BypassCIDRs: []string{"10.20.0.0/16", "130.153.0.0/16", "130.153.8.0/24"}})

	got := s.bypassCIDRs()
	assert.Equal(t, ReservedBypassCIDRs, got[:len(ReservedBypassCIDRs)])
	assert.Equal(t, []string{"130.153.0.0/16"}, got[len(ReservedBypassCIDRs):])
	assert.Contains(t, s.nftablesNAT(), "172.16.0.0/12, 192.168.0.0/16, 224.0.0.0/4, 240.0.0.0/4, 130.153.0.0/16 }")
}

func TestValidateBypassCIDRs(t *testing.T) {
	require.NoError(t, ValidateBypassCIDRs([]string{"130.153.0.0/16", "198.51.100.7/32"}))
	require.NoError(t, ValidateBypassCIDRs(nil))
	assert.Error(t, ValidateBypassCIDRs([]string{"130.153.0.0"}))
	assert.Error(t, ValidateBypassCIDRs([]string{"fd00::/8"}))
}
