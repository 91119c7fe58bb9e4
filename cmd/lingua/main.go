package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "modernc.org/sqlite" // sqlite driver for the sql provider format

	"github.com/pitabwire/lingua"
	"github.com/pitabwire/lingua/config"
	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/version"
)

const minArgsCommand = 2

func main() {
	if len(os.Args) < minArgsCommand {
		usage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "get":
		exitOnErr(cmdGet(ctx, os.Args[2:], os.Stdout))
	case "chain":
		exitOnErr(cmdChain(os.Args[2:], os.Stdout))
	case "version":
		fmt.Fprintln(os.Stdout, version.String())
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %q\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "lingua <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  get [--config FILE] [--lang CULTURE] [--base PATH] [--mode string|object|stream] <key>...")
	fmt.Fprintln(w, "  chain [--fallback CULTURE] <culture>")
	fmt.Fprintln(w, "  version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Without --config the LOCALIZATION_* environment variables are used.")
}

func loadConfig(path string) (config.ConfigurationDefault, error) {
	if path == "" {
		return config.FromEnv[config.ConfigurationDefault]()
	}
	return config.FromFile[config.ConfigurationDefault](path)
}

func cmdGet(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	configPath := fs.String("config", "", "yaml configuration file")
	lang := fs.String("lang", "", "culture to resolve for")
	base := fs.String("base", "", "base path of the resources")
	mode := fs.String("mode", "string", "how to decode values: string, object or stream")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("at least one resource key is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	// one shot lookups have nothing to export
	cfg.OpenTelemetryDisable = true

	ctx = lingua.LoggerContext(ctx, &cfg)

	engine, err := lingua.NewFromConfig(ctx, &cfg)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	if *lang != "" {
		if err = engine.SetLanguage(ctx, *lang); err != nil {
			return err
		}
	}
	if *base != "" {
		if err = engine.UpdateContext(ctx, *base); err != nil {
			return err
		}
	}

	for _, key := range fs.Args() {
		if err = printResource(ctx, engine, *mode, key, out); err != nil {
			return err
		}
	}
	return nil
}

func printResource(ctx context.Context, engine *lingua.Engine, mode, key string, out io.Writer) error {
	switch mode {
	case "string":
		value, found, err := engine.GetString(ctx, key)
		if err != nil {
			return err
		}
		return printValue(out, key, value, found)

	case "object":
		value, found, err := engine.GetObject(ctx, key)
		if err != nil {
			return err
		}
		return printValue(out, key, value, found)

	case "stream":
		stream, found, err := engine.GetStream(ctx, key)
		if err != nil {
			return err
		}
		if !found {
			return printValue(out, key, nil, false)
		}
		defer func() { _ = stream.Close() }()

		_, err = io.Copy(out, stream)
		return err

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func printValue(out io.Writer, key string, value any, found bool) error {
	if !found {
		_, err := fmt.Fprintf(out, "%s\t<missing>\n", key)
		return err
	}
	_, err := fmt.Fprintf(out, "%s\t%v\n", key, value)
	return err
}

func cmdChain(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("chain", flag.ContinueOnError)
	fallback := fs.String("fallback", "", "culture ending every chain, invariant when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("exactly one culture is required")
	}

	requested, err := culture.Parse(fs.Arg(0))
	if err != nil {
		return err
	}

	last := culture.Invariant
	if *fallback != "" {
		if last, err = culture.Parse(*fallback); err != nil {
			return err
		}
	}

	chain := culture.NewResolver(last).Resolve(requested)
	names := make([]string, 0, len(chain))
	for _, tag := range chain {
		if tag.IsInvariant() {
			names = append(names, "invariant")
			continue
		}
		names = append(names, tag.String())
	}

	_, err = fmt.Fprintln(out, strings.Join(names, " -> "))
	return err
}

func exitOnErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
