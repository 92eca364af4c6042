package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/pixfilter"
	"github.com/gogpu/pixfilter/internal/codec"
	"github.com/gogpu/pixfilter/internal/pipeline"
	"github.com/spf13/cobra"
)

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Filter one image file",
		Args:  cobra.NoArgs,
		RunE:  runApply,
	}
	cmd.Flags().StringP("input", "i", "", "Input image (png, jpeg, gif, bmp, tiff, webp)")
	cmd.Flags().StringP("output", "o", "", "Output image")
	cmd.Flags().StringP("filter", "f", "", "Filter name (see 'pixfilter list')")
	cmd.Flags().String("format", "", "Output format: png or jpeg (default from output extension, else png)")
	cmd.Flags().Int("quality", codec.DefaultJPEGQuality, "JPEG quality (1-100)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("filter")
	return cmd
}

func runApply(cmd *cobra.Command, _ []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	filterName, _ := cmd.Flags().GetString("filter")
	formatStr, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	format, err := outputFormat(formatStr, outputPath)
	if err != nil {
		return err
	}
	if quality < 1 || quality > 100 {
		return fmt.Errorf("quality %d out of range [1, 100]", quality)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	engine := pixfilter.NewEngine(cfg.EngineOptions()...)
	defer engine.Close()

	res, err := pipeline.Run(cmd.Context(), data, filterName, pipeline.Options{
		Catalog:   cat,
		Applier:   engine,
		Format:    format,
		Quality:   quality,
		MaxPixels: cfg.Server.MaxPixels,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, res.Data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d %s -> %s (%s, %d bytes)\n",
		filterName, res.Width, res.Height, res.SrcFormat, outputPath, format, len(res.Data))
	return nil
}

// outputFormat picks the encoder from --format, falling back to the output
// file extension and then to PNG.
func outputFormat(flag, path string) (codec.Format, error) {
	if flag != "" {
		return codec.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return codec.JPEG, nil
	default:
		return codec.PNG, nil
	}
}
