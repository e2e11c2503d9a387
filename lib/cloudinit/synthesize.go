package cloudinit

import (
	"fmt"
	"strconv"

	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/images"
)

// Defaults for the egress relay of the deployment network.
const (
	DefaultProxyURL     = "socks5://socks.cc.uec.ac.jp:1080"
	DefaultListenPort   = 1081
	DefaultTransocksURL = "https://github.com/cybozu-go/transocks/releases/latest/download/transocks"
)

// DefaultBypassCIDRs are the site-local networks reached without the relay.
var DefaultBypassCIDRs = []string{"130.153.0.0/16"}

// Limit keys set on virtual machines.
const (
	LimitCPU    = "limits.cpu"
	LimitMemory = "limits.memory"
)

// Config describes the egress environment every guest is configured for.
type Config struct {
	// ProxyURL is the upstream SOCKS relay transocks forwards to.
	ProxyURL string
	// ListenPort is the local port transocks listens on and NAT redirects to.
	ListenPort int
	// BypassCIDRs extend ReservedBypassCIDRs.
	BypassCIDRs []string
	// TransocksURL is where guests download the transocks binary from.
	TransocksURL string
}

// DefaultConfig returns the configuration for the default deployment network.
func DefaultConfig() Config {
	return Config{
		ProxyURL:     DefaultProxyURL,
		ListenPort:   DefaultListenPort,
		BypassCIDRs:  DefaultBypassCIDRs,
		TransocksURL: DefaultTransocksURL,
	}
}

// Identity is the guest's default user. PasswordHash must already be hashed.
type Identity struct {
	Username     string
	PasswordHash string
}

// Request carries everything that shapes one instance's boot document.
type Request struct {
	Identity     Identity
	Remote       images.RemoteKind
	Alias        string
	InstanceType hypervisor.InstanceType
	VCPU         *int
	MemoryMB     *int
}

// Limits are instance configuration keys for the hypervisor.
type Limits map[string]string

// Synthesizer builds boot documents. It holds no per-request state.
type Synthesizer struct {
	cfg Config
}

// NewSynthesizer creates a synthesizer, filling unset fields from DefaultConfig.
func NewSynthesizer(cfg Config) *Synthesizer {
	def := DefaultConfig()
	if cfg.ProxyURL == "" {
		cfg.ProxyURL = def.ProxyURL
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = def.ListenPort
	}
	if cfg.TransocksURL == "" {
		cfg.TransocksURL = def.TransocksURL
	}
	return &Synthesizer{cfg: cfg}
}

// Synthesize builds the boot document and resource limits for req.
func (s *Synthesizer) Synthesize(req Request) (*Document, Limits) {
	branch := ResolveBranch(req.Remote, req.Alias)
	parts := s.branchParts(branch)

	doc := &Document{
		SystemInfo: SystemInfo{DefaultUser: DefaultUser{
			Name:       req.Identity.Username,
			Passwd:     req.Identity.PasswordHash,
			LockPasswd: false,
		}},
		SSHPasswordAuth: true,
	}

	doc.BootCmd = append(doc.BootCmd, parts.early...)
	doc.BootCmd = append(doc.BootCmd, s.sharedEarly()...)

	doc.WriteFiles = append(doc.WriteFiles, s.sharedFiles()...)
	doc.WriteFiles = append(doc.WriteFiles, parts.files...)

	doc.RunCmd = append(doc.RunCmd, sharedLate()...)
	doc.RunCmd = append(doc.RunCmd, parts.late...)
	doc.RunCmd = append(doc.RunCmd,
		Sh("systemctl enable avahi-daemon"),
		Sh("systemctl start avahi-daemon"),
	)

	return doc, resourceLimits(req)
}

type branchParts struct {
	early []Command
	files []File
	late  []Command
}

func (s *Synthesizer) branchParts(b Branch) branchParts {
	switch b {
	case BranchCloudDefault:
		return branchParts{
			files: []File{{
				Path:        "/etc/ufw/before.rules",
				Content:     s.iptablesNAT(true),
				Owner:       "root:root",
				Permissions: "0640",
				Append:      true,
			}},
			late: []Command{
				Sh("ufw enable"),
				Sh("ufw allow 22"),
				Sh("apt update"),
				Sh("apt install -y avahi-daemon"),
				Sh("ufw allow 5353"),
			},
		}
	case BranchDebianFamily:
		aptProxy := "Acquire::http::Proxy=" + s.relayProxy()
		return branchParts{
			early: []Command{
				Exec("cloud-init-per", "once", "apt-bootstrap", "sh", "-c",
					fmt.Sprintf("apt-get -o %s update && apt-get -o %s install -y curl nftables", aptProxy, aptProxy)),
			},
			files: []File{{
				Path:        "/etc/nftables.conf",
				Content:     s.nftablesNAT(),
				Owner:       "root:root",
				Permissions: "0755",
			}},
			late: []Command{
				Sh("systemctl enable nftables"),
				Sh("systemctl start nftables"),
				Sh("apt-get update"),
				Sh("apt-get install -y avahi-daemon"),
			},
		}
	case BranchArchFamily:
		return branchParts{
			early: []Command{
				Exec("cloud-init-per", "once", "pacman-bootstrap", "sh", "-c",
					fmt.Sprintf("all_proxy=%s pacman -Sy --noconfirm --needed curl iptables", s.relayProxy())),
			},
			files: []File{{
				Path:        "/etc/iptables/iptables.rules",
				Content:     s.iptablesNAT(false),
				Owner:       "root:root",
				Permissions: "0644",
			}},
			late: []Command{
				Sh("systemctl enable iptables"),
				Sh("systemctl start iptables"),
				Sh("pacman -Sy --noconfirm"),
				Sh("pacman -S --noconfirm avahi nss-mdns"),
			},
		}
	case BranchUnrecognized:
		return branchParts{}
	default:
		panic(fmt.Sprintf("cloudinit: unhandled branch %d", int(b)))
	}
}

func (s *Synthesizer) sharedEarly() []Command {
	return []Command{
		Exec("cloud-init-per", "once", "fetch-transocks",
			"curl", "-fsSL", "--proxy", s.relayProxy(), "-o", TransocksBinaryPath, s.cfg.TransocksURL),
		Exec("cloud-init-per", "once", "chmod-transocks", "chmod", "0755", TransocksBinaryPath),
	}
}

func (s *Synthesizer) sharedFiles() []File {
	return []File{
		{
			Path:        TransocksConfigPath,
			Content:     s.transocksConfig(),
			Owner:       "root:root",
			Permissions: "0644",
		},
		{
			Path:        TransocksUnitPath,
			Content:     transocksUnit,
			Owner:       "root:root",
			Permissions: "0644",
		},
	}
}

func sharedLate() []Command {
	return []Command{
		Sh("systemctl daemon-reload"),
		Sh("systemctl enable transocks"),
		Sh("systemctl start transocks"),
	}
}

// resourceLimits only applies to virtual machines. Containers run without
// limit keys even when values were supplied.
func resourceLimits(req Request) Limits {
	limits := Limits{}
	if req.InstanceType != hypervisor.TypeVirtualMachine {
		return limits
	}
	if req.VCPU != nil {
		limits[LimitCPU] = strconv.Itoa(*req.VCPU)
	}
	if req.MemoryMB != nil {
		limits[LimitMemory] = strconv.Itoa(*req.MemoryMB) + "MB"
	}
	return limits
}
