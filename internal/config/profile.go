// Package config loads TOML run profiles for the gen command.
//
// A profile fixes the sources, outputs and parameter values of a
// provisioning station so operators only pass what changes per device:
//
//	ledger = "provision.db"
//	strict = true
//	remove = ["ROTATING_DEVICE_ID"]
//
//	[inputs]
//	json = "base.json"
//	flash_dump = "dump.bin"
//	flash_dump_len = 2048
//
//	[outputs]
//	binary = "factory.bin"
//
//	[set]
//	VENDOR_ID = "0xFFF1"
//
//	[files]
//	DEVICE_ATTESTATION_CERTIFICATE = "dac.pem"
//
// Relative paths are resolved against the profile's directory.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Inputs are the file sources of a run.
type Inputs struct {
	JSON         string `toml:"json"`
	YAML         string `toml:"yaml"`
	Binary       string `toml:"binary"`
	FlashDump    string `toml:"flash_dump"`
	FlashDumpLen int    `toml:"flash_dump_len"`
}

// Outputs are the files a run writes.
type Outputs struct {
	JSON   string `toml:"json"`
	YAML   string `toml:"yaml"`
	Binary string `toml:"binary"`
}

// Assignment binds a parameter name to a value, in profile order.
type Assignment struct {
	Name  string
	Value any
}

// Profile is a decoded run profile.
type Profile struct {
	Inputs  Inputs
	Outputs Outputs
	// Set holds literal parameter values.
	Set []Assignment
	// Files holds certificate or key paths for ByteArray parameters.
	Files  []Assignment
	Remove []string
	Ledger string
	Strict bool
}

type fileProfile struct {
	Ledger  string            `toml:"ledger"`
	Strict  bool              `toml:"strict"`
	Remove  []string          `toml:"remove"`
	Inputs  Inputs            `toml:"inputs"`
	Outputs Outputs           `toml:"outputs"`
	Set     map[string]any    `toml:"set"`
	Files   map[string]string `toml:"files"`
}

// Load reads a profile file and resolves its relative paths against the
// file's directory.
func Load(path string) (*Profile, error) {
	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p, err := build(raw, meta)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", path, err)
	}
	p.resolve(filepath.Dir(path))
	return p, nil
}

// Decode reads a profile from r. Paths are left as written.
func Decode(r io.Reader) (*Profile, error) {
	var raw fileProfile
	meta, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return build(raw, meta)
}

func build(raw fileProfile, meta toml.MetaData) (*Profile, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if raw.Inputs.FlashDumpLen < 0 {
		return nil, fmt.Errorf("inputs.flash_dump_len must not be negative")
	}

	p := &Profile{
		Inputs:  trimInputs(raw.Inputs),
		Outputs: trimOutputs(raw.Outputs),
		Ledger:  strings.TrimSpace(raw.Ledger),
		Strict:  raw.Strict,
	}
	for _, name := range raw.Remove {
		if v := strings.TrimSpace(name); v != "" {
			p.Remove = append(p.Remove, v)
		}
	}

	// Map iteration order is random; meta.Keys keeps the file order.
	for _, key := range meta.Keys() {
		if len(key) != 2 {
			continue
		}
		switch key[0] {
		case "set":
			p.Set = append(p.Set, Assignment{Name: key[1], Value: raw.Set[key[1]]})
		case "files":
			path := strings.TrimSpace(raw.Files[key[1]])
			if path == "" {
				return nil, fmt.Errorf("files.%s: empty path", key[1])
			}
			p.Files = append(p.Files, Assignment{Name: key[1], Value: path})
		}
	}
	return p, nil
}

func trimInputs(in Inputs) Inputs {
	in.JSON = strings.TrimSpace(in.JSON)
	in.YAML = strings.TrimSpace(in.YAML)
	in.Binary = strings.TrimSpace(in.Binary)
	in.FlashDump = strings.TrimSpace(in.FlashDump)
	return in
}

func trimOutputs(out Outputs) Outputs {
	out.JSON = strings.TrimSpace(out.JSON)
	out.YAML = strings.TrimSpace(out.YAML)
	out.Binary = strings.TrimSpace(out.Binary)
	return out
}

func (p *Profile) resolve(dir string) {
	join := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}
	p.Inputs.JSON = join(p.Inputs.JSON)
	p.Inputs.YAML = join(p.Inputs.YAML)
	p.Inputs.Binary = join(p.Inputs.Binary)
	p.Inputs.FlashDump = join(p.Inputs.FlashDump)
	p.Outputs.JSON = join(p.Outputs.JSON)
	p.Outputs.YAML = join(p.Outputs.YAML)
	p.Outputs.Binary = join(p.Outputs.Binary)
	p.Ledger = join(p.Ledger)
	for i := range p.Files {
		p.Files[i].Value = join(p.Files[i].Value.(string))
	}
}
