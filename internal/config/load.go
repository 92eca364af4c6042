package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/pixfilter"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclFile is the top-level structure of a configuration file for decoding.
type hclFile struct {
	Server  *hclServer   `hcl:"server,block"`
	Engine  *hclEngine   `hcl:"engine,block"`
	Log     *hclLog      `hcl:"log,block"`
	Kernels []*hclKernel `hcl:"kernel,block"`
}

type hclServer struct {
	Addr            *string `hcl:"addr,optional"`
	StaticDir       *string `hcl:"static_dir,optional"`
	MaxUploadBytes  *int64  `hcl:"max_upload_bytes,optional"`
	MaxPixels       *int    `hcl:"max_pixels,optional"`
	ReadTimeout     *string `hcl:"read_timeout,optional"`
	WriteTimeout    *string `hcl:"write_timeout,optional"`
	ShutdownTimeout *string `hcl:"shutdown_timeout,optional"`
}

type hclEngine struct {
	Workers           *int `hcl:"workers,optional"`
	MinParallelPixels *int `hcl:"min_parallel_pixels,optional"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type hclKernel struct {
	Name    string         `hcl:"name,label"`
	Rows    hcl.Expression `hcl:"rows"`
	Divisor *float64       `hcl:"divisor,optional"`
}

// Load reads and parses an HCL configuration file.
func Load(path string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	cfg, err := decode(f.Body)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	pixfilter.Logger().Debug("config: loaded", "path", path, "kernels", len(cfg.Kernels))
	return cfg, nil
}

// Parse parses HCL source held in memory. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	return decode(f.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}

	cfg := Default()
	var diags hcl.Diagnostics

	if s := parsed.Server; s != nil {
		setIfPresent(&cfg.Server.Addr, s.Addr)
		setIfPresent(&cfg.Server.StaticDir, s.StaticDir)
		setIfPresent(&cfg.Server.MaxUploadBytes, s.MaxUploadBytes)
		setIfPresent(&cfg.Server.MaxPixels, s.MaxPixels)
		for _, d := range []struct {
			name string
			src  *string
			dst  *time.Duration
		}{
			{"read_timeout", s.ReadTimeout, &cfg.Server.ReadTimeout},
			{"write_timeout", s.WriteTimeout, &cfg.Server.WriteTimeout},
			{"shutdown_timeout", s.ShutdownTimeout, &cfg.Server.ShutdownTimeout},
		} {
			if d.src == nil {
				continue
			}
			v, err := time.ParseDuration(*d.src)
			if err != nil {
				return nil, fmt.Errorf("%w: server.%s: %w", ErrInvalidConfig, d.name, err)
			}
			*d.dst = v
		}
	}

	if e := parsed.Engine; e != nil {
		setIfPresent(&cfg.Engine.Workers, e.Workers)
		setIfPresent(&cfg.Engine.MinParallelPixels, e.MinParallelPixels)
	}

	if l := parsed.Log; l != nil {
		setIfPresent(&cfg.Log.Level, l.Level)
		setIfPresent(&cfg.Log.Format, l.Format)
	}

	seen := make(map[string]string, len(parsed.Kernels))
	for _, kb := range parsed.Kernels {
		key := pixfilter.CanonicalName(kb.Name)
		if _, builtin := pixfilter.DefaultCatalog().Lookup(key); builtin {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Reserved kernel name",
				Detail:   fmt.Sprintf("%q is a built-in filter and cannot be redefined.", kb.Name),
				Subject:  kb.Rows.Range().Ptr(),
			})
			continue
		}
		if first, dup := seen[key]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate kernel block",
				Detail:   fmt.Sprintf("A kernel named %q is already defined as %q.", kb.Name, first),
				Subject:  kb.Rows.Range().Ptr(),
			})
			continue
		}
		seen[key] = kb.Name

		k, kDiags := decodeKernel(kb)
		diags = append(diags, kDiags...)
		if !kDiags.HasErrors() {
			cfg.Kernels[kb.Name] = k
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Catalog(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// kernelRowsType is the shape every kernel rows expression is converted to
// before decoding.
var kernelRowsType = cty.List(cty.List(cty.Number))

// decodeKernel evaluates the rows expression and checks it is a 3x3 matrix
// of finite numbers.
func decodeKernel(kb *hclKernel) (pixfilter.Kernel, hcl.Diagnostics) {
	var k pixfilter.Kernel

	val, diags := kb.Rows.Value(nil)
	if diags.HasErrors() {
		return k, diags
	}
	subject := kb.Rows.Range().Ptr()
	invalid := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid kernel rows",
			Detail:   fmt.Sprintf("Kernel %q: %s", kb.Name, detail),
			Subject:  subject,
		}}
	}

	var rows [][]float64
	var err error
	if converted, convErr := convert.Convert(val, kernelRowsType); convErr != nil {
		err = convErr
	} else {
		err = gocty.FromCtyValue(converted, &rows)
	}
	if err != nil {
		if ky, kx, ok := weightIndex(err); ok {
			return k, invalid(fmt.Sprintf("weight [%d][%d] must be a number.", ky, kx))
		}
		return k, invalid("rows must be a list of 3 rows of 3 numbers.")
	}

	if len(rows) != 3 {
		return k, invalid(fmt.Sprintf("expected 3 rows, got %d.", len(rows)))
	}
	for ky, row := range rows {
		if len(row) != 3 {
			return k, invalid(fmt.Sprintf("row %d has %d weights, expected 3.", ky, len(row)))
		}
		copy(k[ky][:], row)
	}

	if kb.Divisor != nil {
		if *kb.Divisor == 0 {
			return k, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid kernel divisor",
				Detail:   fmt.Sprintf("Kernel %q: divisor must not be zero.", kb.Name),
				Subject:  subject,
			}}
		}
		k = k.Scale(1 / *kb.Divisor)
	}

	if err := pixfilter.KernelSpec(k).Validate(); err != nil {
		return k, invalid(err.Error())
	}
	return k, nil
}

// weightIndex extracts [row][col] from a conversion error that points at a
// single weight.
func weightIndex(err error) (ky, kx int, ok bool) {
	var pathErr cty.PathError
	if !errors.As(err, &pathErr) || len(pathErr.Path) != 2 {
		return 0, 0, false
	}
	var idx [2]int
	for i, step := range pathErr.Path {
		is, isIndex := step.(cty.IndexStep)
		if !isIndex || gocty.FromCtyValue(is.Key, &idx[i]) != nil {
			return 0, 0, false
		}
	}
	return idx[0], idx[1], true
}
