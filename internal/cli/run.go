// Package cli wires the cache core, the FPS client and configuration
// into the filtercache command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"filtercache/internal/cache"
	"filtercache/internal/config"
	"filtercache/internal/svofps"
)

// App holds everything a command needs to run.
type App struct {
	IO         *IO
	CacheDir   string
	Downloader *cache.Downloader
	Marker     *config.Marker
}

type globalFlags struct {
	cacheDir   string
	configPath string
	quiet      bool
	remaining  []string
}

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string, env []string) int {
	ioCtx := NewIO(in, out, errOut)

	if len(args) < 2 {
		printUsage(ioCtx)
		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		ioCtx.ErrPrintln("error:", err)
		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(ioCtx)
		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == "--help" {
		printUsage(ioCtx)
		return 0
	}

	cliOverrides := config.Config{CacheDir: flags.cacheDir}

	cfg, cfgErr := config.Load(flags.configPath, cliOverrides, env)
	if cfgErr != nil {
		ioCtx.ErrPrintln("error:", cfgErr)
		return 1
	}

	cacheDir := cfg.CacheDir
	if !filepath.IsAbs(cacheDir) {
		if abs, absErr := filepath.Abs(cacheDir); absErr == nil {
			cacheDir = abs
		}
	}

	level := slog.LevelInfo
	if flags.quiet {
		level = slog.LevelError
	}

	log := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	marker := config.NewMarker(config.StampDir(env))
	fetcher := svofps.New(cfg.FPSBaseURL, cfg.Timeout())

	app := &App{
		IO:         ioCtx,
		CacheDir:   cacheDir,
		Downloader: cache.NewDownloader(fetcher, marker, log),
		Marker:     marker,
	}

	cmd, ok := commands()[name]
	if !ok {
		ioCtx.ErrPrintln("error: unknown command:", name)
		printUsage(ioCtx)

		return 1
	}

	return cmd.Run(context.Background(), app, flags.remaining[1:])
}

// parseGlobalFlags strips the global flags that precede the command
// name. Everything from the first non-flag argument on is left for the
// command.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	i := 0

	for i < len(args) {
		switch arg := args[i]; arg {
		case "--cache-dir":
			if i+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("flag requires an argument: %s", arg)
			}

			flags.cacheDir = args[i+1]
			i += 2
		case "--config":
			if i+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("flag requires an argument: %s", arg)
			}

			flags.configPath = args[i+1]
			i += 2
		case "--quiet", "-q":
			flags.quiet = true
			i++
		default:
			flags.remaining = args[i:]
			return flags, nil
		}
	}

	return flags, nil
}

func commands() map[string]*Command {
	cmds := []*Command{
		cmdDownload(),
		cmdUpdate(),
		cmdIndex(),
		cmdShow(),
		cmdStatus(),
		cmdShell(),
	}

	byName := make(map[string]*Command, len(cmds))
	for _, c := range cmds {
		byName[c.Name()] = c
	}

	return byName
}

func printUsage(o *IO) {
	o.Println("Usage: filtercache [global flags] <command> [args]")
	o.Println()
	o.Println("Local cache for SVO filter index and transmission data.")
	o.Println()
	o.Println("Commands:")

	for _, c := range []*Command{
		cmdDownload(), cmdUpdate(), cmdIndex(), cmdShow(), cmdStatus(), cmdShell(),
	} {
		o.Println(c.HelpLine())
	}

	o.Println()
	o.Println("Global flags:")
	o.Println("  --cache-dir <dir>        cache directory (default: user cache dir)")
	o.Println("  --config <path>          explicit config file")
	o.Println("  -q, --quiet              only log errors")
}
