package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/factorydata/internal/certs"
	"github.com/roach88/factorydata/internal/pipeline"
	"github.com/roach88/factorydata/internal/registry"
)

// paramFlags binds one flag per registry parameter.
type paramFlags struct {
	reg    *registry.Registry
	values map[string]*string // parameter name -> flag value
}

// ParamFlagName is the flag spelling of a parameter: VENDOR_ID -> vendor-id.
func ParamFlagName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

func bindParamFlags(cmd *cobra.Command, reg *registry.Registry) *paramFlags {
	pf := &paramFlags{reg: reg, values: make(map[string]*string)}
	for _, d := range reg.Descriptors() {
		v := new(string)
		pf.values[d.Name] = v

		usage := fmt.Sprintf("value for %s (%s)", d.Name, d.Kind)
		if d.Kind == registry.KindByteArray {
			usage = fmt.Sprintf("path to a .pem or .der file for %s", d.Name)
		}
		cmd.Flags().StringVar(v, ParamFlagName(d.Name), "", usage)
	}
	return pf
}

// overrides returns the parameters given on the command line, in registry
// order. ByteArray parameters are read from their certificate files; a file
// that cannot be used is returned as a failure and left out.
func (pf *paramFlags) overrides(cmd *cobra.Command) ([]pipeline.Override, []fileFailure) {
	var (
		out      []pipeline.Override
		failures []fileFailure
	)
	for _, d := range pf.reg.Descriptors() {
		if !cmd.Flags().Changed(ParamFlagName(d.Name)) {
			continue
		}
		raw := *pf.values[d.Name]
		if d.Kind != registry.KindByteArray {
			out = append(out, pipeline.Override{Name: d.Name, Value: raw})
			continue
		}
		o, err := loadFileOverride(pf.reg, d.Name, raw, pipeline.ActorCLI)
		if err != nil {
			failures = append(failures, fileFailure{Name: d.Name, Path: raw, Err: err})
			continue
		}
		out = append(out, o)
	}
	return out, failures
}

// fileFailure is a certificate or key file that could not be loaded.
type fileFailure struct {
	Name string
	Path string
	Err  error
}

func (f fileFailure) String() string {
	return fmt.Sprintf("%s can't use %s for %s: %v", pipeline.ActorCLI, f.Path, f.Name, f.Err)
}

// loadFileOverride reads a certificate or key file for a ByteArray
// parameter, extracting the PEM block type the parameter expects.
func loadFileOverride(reg *registry.Registry, name, path, actor string) (pipeline.Override, error) {
	d, err := reg.Lookup(name)
	if err != nil {
		return pipeline.Override{}, err
	}
	if d.Kind != registry.KindByteArray {
		return pipeline.Override{}, fmt.Errorf("%s is a %s parameter, not a byte array", d.Name, d.Kind)
	}
	pemType := d.PEM
	if pemType == "" {
		pemType = registry.PEMCertificate
	}
	der, err := certs.Load(path, pemType)
	if err != nil {
		return pipeline.Override{}, err
	}
	return pipeline.Override{Name: d.Name, Value: der, Actor: actor}, nil
}

// parseAssignment parses a --set NAME=VALUE flag. Byte array values are
// lists of hex tokens separated by commas or spaces.
func parseAssignment(reg *registry.Registry, s string) (pipeline.Override, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return pipeline.Override{}, fmt.Errorf("--set %q: want NAME=VALUE", s)
	}

	return pipeline.Override{Name: name, Value: byteTokens(reg, name, value)}, nil
}

// byteTokens splits a text value of a byte array parameter into hex tokens
// separated by commas or spaces. Other values are returned unchanged.
func byteTokens(reg *registry.Registry, name string, value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if d, err := reg.Lookup(name); err != nil || d.Kind != registry.KindByteArray {
		return value
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
