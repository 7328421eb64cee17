package serdegen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serdegen/serdegen/gogen"
	"github.com/serdegen/serdegen/provider"
	"github.com/serdegen/serdegen/sink"
)

// Generator provides a fluent API for code generation.
//
// Example:
//
//	serdegen.FromPackages("example.com/api").
//	    Roots("User", "Order").
//	    WithKeyPath("User.ID").
//	    ToDir("./api")
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// FromPackages creates a Generator analyzing the given Go packages.
// This is the entry point for the fluent API.
func FromPackages(pkgs ...string) *Generator {
	return &Generator{cfg: Config{Packages: pkgs}}
}

// FromConfig creates a Generator from an existing configuration.
func FromConfig(cfg *Config) *Generator {
	return &Generator{cfg: *cfg}
}

// Roots adds root type names to analyze.
func (g *Generator) Roots(names ...string) *Generator {
	g.cfg.RootTypes = append(g.cfg.RootTypes, names...)
	return g
}

// WithKeyPath adds a dotted key path, e.g. "User.ID".
func (g *Generator) WithKeyPath(path string) *Generator {
	g.cfg.KeyPaths = append(g.cfg.KeyPaths, path)
	return g
}

// PackageName overrides the package clause of the generated file.
func (g *Generator) PackageName(name string) *Generator {
	g.cfg.PackageName = name
	return g
}

// WithLogger sets a custom logger for classification warnings.
// If not set, slog.Default() will be used.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// ToDir generates files into the specified directory. This is a terminal
// operation.
func (g *Generator) ToDir(dir string) error {
	g.cfg.OutDir = dir
	_, err := generate(context.Background(), &g.cfg, g.logger, sink.NewFilesystemSink(dir))
	return err
}

// ToSink generates files into the given sink instead of a directory.
func (g *Generator) ToSink(out sink.OutputSink) (*gogen.Result, error) {
	if g.cfg.OutDir == "" {
		g.cfg.OutDir = "."
	}
	return generate(context.Background(), &g.cfg, g.logger, out)
}

// Generate runs the full pipeline: validate the configuration, classify
// the configured root types into descriptor graphs, and emit serialization
// code for them into out. Classification warnings are logged; unsupported
// types surface as generation errors carrying the classifier's diagnostics.
func Generate(ctx context.Context, cfg *Config, out sink.OutputSink) (*gogen.Result, error) {
	return generate(ctx, cfg, nil, out)
}

func generate(ctx context.Context, cfg *Config, logger *slog.Logger, out sink.OutputSink) (*gogen.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &provider.SourceProvider{}
	graph, err := p.BuildGraph(ctx, provider.SourceInputOptions{
		Packages:  cfg.Packages,
		RootTypes: cfg.RootTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build descriptor graph: %w", err)
	}

	for _, w := range graph.Warnings {
		logger.Warn("classification warning",
			slog.String("code", w.Code),
			slog.String("type", w.TypeName),
			slog.String("detail", w.Message),
		)
	}

	pkgName := cfg.PackageName
	if pkgName == "" {
		pkgName = graph.Package.Name
	}

	roots := make([]gogen.Root, 0, len(graph.Roots))
	for _, r := range graph.Roots {
		roots = append(roots, gogen.Root{Name: r.Name, Desc: r.Desc})
	}

	keyPaths, err := cfg.keyPaths()
	if err != nil {
		return nil, err
	}

	gen := &gogen.Generator{}
	result, err := gen.Generate(ctx, roots, gogen.GenerateOptions{
		Sink: out,
		Config: gogen.Config{
			PackageName: pkgName,
			KeyPaths:    keyPaths,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}
	return result, nil
}
