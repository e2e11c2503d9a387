// Package cloudinit builds the first-boot cloud-config document for new instances.
package cloudinit

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Header is the marker line cloud-init requires on user-data documents.
const Header = "#cloud-config\n"

// Document is a cloud-config user-data document. Field order is the
// serialization order, and list order is execution order in the guest.
type Document struct {
	SystemInfo      SystemInfo `yaml:"system_info"`
	SSHPasswordAuth bool       `yaml:"ssh_pwauth"`
	BootCmd         []Command  `yaml:"bootcmd,omitempty"`
	WriteFiles      []File     `yaml:"write_files,omitempty"`
	RunCmd          []Command  `yaml:"runcmd,omitempty"`
}

type SystemInfo struct {
	DefaultUser DefaultUser `yaml:"default_user"`
}

type DefaultUser struct {
	Name       string `yaml:"name"`
	Passwd     string `yaml:"passwd"`
	LockPasswd bool   `yaml:"lock_passwd"`
}

// File is a write_files entry.
type File struct {
	Path        string `yaml:"path"`
	Content     string `yaml:"content"`
	Owner       string `yaml:"owner,omitempty"`
	Permissions string `yaml:"permissions,omitempty"`
	Encoding    string `yaml:"encoding,omitempty"`
	Append      bool   `yaml:"append,omitempty"`
	Defer       bool   `yaml:"defer,omitempty"`
}

// Command is a bootcmd or runcmd entry. A command with Argv set is executed
// directly; otherwise Shell is passed to sh.
type Command struct {
	Shell string
	Argv  []string
}

// Sh returns a shell-string command.
func Sh(s string) Command { return Command{Shell: s} }

// Exec returns an argv command.
func Exec(argv ...string) Command { return Command{Argv: argv} }

func (c Command) String() string {
	if c.Argv != nil {
		return fmt.Sprintf("%q", c.Argv)
	}
	return c.Shell
}

// MarshalYAML emits the command as a scalar or a sequence.
func (c Command) MarshalYAML() (interface{}, error) {
	if c.Argv != nil {
		return c.Argv, nil
	}
	return c.Shell, nil
}

// UnmarshalYAML accepts both command forms.
func (c *Command) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = Command{Shell: value.Value}
		return nil
	case yaml.SequenceNode:
		var argv []string
		if err := value.Decode(&argv); err != nil {
			return err
		}
		*c = Command{Argv: argv}
		return nil
	default:
		return fmt.Errorf("cloud-config command at line %d: expected string or list", value.Line)
	}
}

// Render serializes the document with the cloud-config header.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return "", fmt.Errorf("encode cloud-config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode cloud-config: %w", err)
	}
	return buf.String(), nil
}

// Parse reads a rendered document back. The header line is required.
func Parse(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte(Header)) {
		return nil, fmt.Errorf("missing %q header", Header[:len(Header)-1])
	}
	var d Document
	if err := yaml.Unmarshal(data[len(Header):], &d); err != nil {
		return nil, fmt.Errorf("decode cloud-config: %w", err)
	}
	return &d, nil
}
