package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/serdegen/serdegen"
	"github.com/serdegen/serdegen/provider"
	"github.com/serdegen/serdegen/sink"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate serialization and key-extraction code."`
	Check   CheckCmd   `cmd:"" help:"Classify types and report problems without generating files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type GenCmd struct {
	Out     string   `arg:"" optional:"" help:"Output directory for generated files."`
	Config  string   `help:"Config file to load." short:"c" default:"serdegen.toml"`
	Package []string `help:"Go package paths to analyze (overrides config)." short:"p"`
	Root    []string `help:"Root type names to analyze (overrides config)." short:"r"`
	Key     []string `help:"Dotted key paths, e.g. User.ID (overrides config)." short:"k"`
}

func (c *GenCmd) Run() error {
	cfg, err := loadConfig(c.Config, c.Package, c.Root, c.Key)
	if err != nil {
		return err
	}
	if c.Out != "" {
		cfg.OutDir = c.Out
	}

	result, err := serdegen.Generate(context.Background(), cfg, sink.NewFilesystemSink(cfg.OutDir))
	if err != nil {
		return err
	}
	for path, size := range result.Files {
		fmt.Printf("wrote %s (%d bytes)\n", path, size)
	}
	return nil
}

type CheckCmd struct {
	Config  string   `help:"Config file to load." short:"c" default:"serdegen.toml"`
	Package []string `help:"Go package paths to analyze (overrides config)." short:"p"`
	Root    []string `help:"Root type names to analyze (overrides config)." short:"r"`
}

func (c *CheckCmd) Run() error {
	cfg, err := loadConfig(c.Config, c.Package, c.Root, nil)
	if err != nil {
		return err
	}

	p := &provider.SourceProvider{}
	graph, err := p.BuildGraph(context.Background(), provider.SourceInputOptions{
		Packages:  cfg.Packages,
		RootTypes: cfg.RootTypes,
	})
	if err != nil {
		return err
	}

	for _, w := range graph.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Code, w.Message)
	}
	fmt.Printf("✓ %d root types classified in %s\n", len(graph.Roots), graph.Package.Path)
	return nil
}

// loadConfig reads the config file if it exists and applies flag overrides.
// Flags alone are enough to run without a config file.
func loadConfig(path string, pkgs, roots, keys []string) (*serdegen.Config, error) {
	cfg := &serdegen.Config{OutDir: "."}
	if _, err := os.Stat(path); err == nil {
		loaded, err := serdegen.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if path != serdegen.DefaultConfigFile {
		// An explicitly named config file must exist.
		return nil, fmt.Errorf("config file %s not found", path)
	}

	if len(pkgs) > 0 {
		cfg.Packages = pkgs
	}
	if len(roots) > 0 {
		cfg.RootTypes = roots
	}
	if len(keys) > 0 {
		cfg.KeyPaths = keys
	}
	return cfg, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("serdegen"),
		kong.Description("Generate serialization and key-extraction code from Go type definitions."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
