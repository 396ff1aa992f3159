package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/factorydata/internal/codec"
	"github.com/roach88/factorydata/internal/format"
	"github.com/roach88/factorydata/internal/registry"
)

// DumpRecord is one record as listed by the dump command.
type DumpRecord struct {
	Offset int    `json:"offset"`
	ID     uint32 `json:"id"`
	Name   string `json:"name,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Length int    `json:"length"`
	Value  any    `json:"value"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	var flash bool

	cmd := &cobra.Command{
		Use:   "dump <container.bin>",
		Short: "List the records of a binary container",
		Long: `List every record of a binary factory-data container with its offset, id,
parameter name and decoded value. Records with unknown ids are listed with
their raw bytes.

With --flash the file is treated as a flash read-back: an erased record id
(0xFFFFFFFF) ends the data.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, args[0], flash, cmd)
		},
	}
	cmd.Flags().BoolVar(&flash, "flash", false, "stop at erased flash")
	return cmd
}

func runDump(opts *RootOptions, path string, flash bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := format.ReadFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "read container", err)
	}
	records, err := format.DecodeBinary(data, format.DecodeOptions{StopAtErased: flash})
	if err != nil {
		return formatter.Fail(ExitFailure, "decode container", err)
	}

	reg := registry.Default()
	out := make([]DumpRecord, 0, len(records))
	for _, rec := range records {
		dr := DumpRecord{Offset: rec.Offset, ID: rec.ID, Length: len(rec.Value)}
		d, err := reg.ReverseLookup(rec.ID)
		if err != nil {
			dr.Value = codec.HexTokens(rec.Value)
			out = append(out, dr)
			continue
		}
		dr.Name, dr.Kind = d.Name, d.Kind.String()
		if v, err := codec.Decode(d.Kind, rec.Value); err == nil {
			dr.Value = v
		} else {
			dr.Value = codec.HexTokens(rec.Value)
		}
		out = append(out, dr)
	}

	if formatter.IsJSON() {
		return formatter.Success(out)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tID\tNAME\tKIND\tLEN\tVALUE")
	for i, dr := range out {
		name, kind, value := dr.Name, dr.Kind, ""
		if name == "" {
			name, kind = "?", "?"
			value = codec.Display(registry.KindByteArray, records[i].Value)
		} else {
			d, _ := reg.ReverseLookup(dr.ID)
			value = codec.Display(d.Kind, records[i].Value)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%s\n", dr.Offset, dr.ID, name, kind, dr.Length, value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	formatter.VerboseLog("%d record(s), %d byte(s)", len(out), len(data))
	return nil
}
