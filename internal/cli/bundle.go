package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/factorydata/internal/imagebin"
)

// BundleResult is the JSON payload of the bundle command.
type BundleResult struct {
	Output string `json:"output"`
	Size   int    `json:"size"`
}

// NewBundleCommand creates the bundle command.
func NewBundleCommand(rootOpts *RootOptions) *cobra.Command {
	var m4, m0, out string

	cmd := &cobra.Command{
		Use:   "bundle --m4 <app.bin> [--m0 <stack.bin>] [-o <out.bin>]",
		Short: "Assemble the dual-core firmware bundle",
		Long: `Assemble the M4 application image and the optional M0 wireless stack image
into one bundle: an 8-byte header holding both image sizes (little-endian
u32) followed by the two images. Without --m0 an empty M0 image is bundled.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			if out == "" {
				out = imagebin.DefaultOutput
			}
			n, err := imagebin.BuildFiles(m4, m0, out)
			if err != nil {
				return formatter.Fail(ExitCommandError, "bundle", err)
			}
			if formatter.IsJSON() {
				return formatter.Success(BundleResult{Output: out, Size: n})
			}
			fmt.Fprintf(formatter.Writer, "✓ Wrote %s (%d bytes)\n", out, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&m4, "m4", "", "M4 application image (required)")
	cmd.Flags().StringVar(&m0, "m0", "", "M0 wireless stack image")
	cmd.Flags().StringVarP(&out, "output", "o", "", "bundle file (default "+imagebin.DefaultOutput+")")
	_ = cmd.MarkFlagRequired("m4")
	return cmd
}
