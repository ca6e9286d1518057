package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reoring/flatcsv"
	"github.com/reoring/flatcsv/config"
	"github.com/reoring/flatcsv/export/xlsx"
	"github.com/reoring/flatcsv/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code:
// 0 on success, 1 when a conversion or the server fails, 2 on usage errors.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "convert":
		return convertCmd(args[1:], stdin, stdout, stderr)
	case "serve":
		return serveCmd(args[1:], stderr)
	case "sample":
		return sampleCmd(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "flatcsv converts JSON documents to CSV\n\nUsage:\n  flatcsv convert [-config file] [-env file] [-o dir] [-format csv|xlsx] [-j N] [file ...]\n  flatcsv serve [-config file] [-env file] [-addr host:port]\n  flatcsv sample [-csv]\n\nNotes:\n  - convert reads stdin when no file (or \"-\") is given.\n  - Without -o a single csv result is written to stdout, followed by a newline.\n  - Files written with -o end at the last record, with no trailing newline.")
}

// commonFlags registers the flags shared by convert and serve.
type commonFlags struct {
	configPath string
	envFile    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.envFile, "env", "", ".env file to load (default .env when present)")
}

func (c *commonFlags) load() (*config.Config, error) {
	var files []string
	if c.envFile != "" {
		files = append(files, c.envFile)
	}
	if err := config.LoadDotEnv(files...); err != nil {
		return nil, err
	}
	return config.Load(c.configPath)
}

func convertCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	var outDir, format string
	var jobs int
	common.register(fs)
	fs.StringVar(&outDir, "o", "", "output directory (one file per input)")
	fs.StringVar(&format, "format", "csv", "output format: csv or xlsx")
	fs.IntVar(&jobs, "j", 4, "number of files converted concurrently")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if format != "csv" && format != "xlsx" {
		fmt.Fprintf(stderr, "convert: unknown format %q\n", format)
		return 2
	}
	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	if outDir == "" && (format != "csv" || len(inputs) > 1) {
		fmt.Fprintln(stderr, "convert: -o is required for xlsx output or several inputs")
		return 2
	}
	if jobs < 1 {
		jobs = 1
	}

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 2
	}
	opt, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 2
	}
	logger := cfg.Logger(stderr)

	c := &converter{opt: opt, format: format, outDir: outDir, stdin: stdin, stdout: stdout, logger: logger, now: time.Now}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fmt.Fprintf(stderr, "convert: creating output dir: %v\n", err)
			return 1
		}
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	var (
		mu     sync.Mutex
		failed int
	)
	for _, in := range inputs {
		g.Go(func() error {
			if err := c.convert(in); err != nil {
				logger.Error("conversion failed", "input", in, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if failed > 0 {
		return 1
	}
	return 0
}

type converter struct {
	opt    flatcsv.Options
	format string
	outDir string
	stdin  io.Reader
	stdout io.Writer
	logger *slog.Logger
	now    func() time.Time
}

func (c *converter) convert(in string) error {
	start := time.Now()
	ds, err := c.parse(in)
	if err != nil {
		return err
	}

	// Files hold the encoder output byte for byte; stdout gets a final
	// newline so shells print the prompt on its own line.
	if c.outDir == "" {
		if err := flatcsv.EncodeTo(c.stdout, ds, c.opt); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		_, err := io.WriteString(c.stdout, "\n")
		return err
	}

	out := filepath.Join(c.outDir, c.outputName(in))
	switch c.format {
	case "xlsx":
		err = xlsx.WriteFile(out, ds)
	default:
		err = writeCSVFile(out, ds, c.opt)
	}
	if err != nil {
		return err
	}
	c.logger.Info("converted", "input", in, "output", out, "rows", len(ds.Rows), "columns", len(ds.Headers), "duration", time.Since(start))
	return nil
}

func (c *converter) parse(in string) (*flatcsv.Dataset, error) {
	if in == "-" {
		return flatcsv.ParseReader(c.stdin, c.opt)
	}
	f, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return flatcsv.ParseReader(f, c.opt)
}

// outputName derives the output file name: the input's base name with the
// format extension, or the dated download name for stdin.
func (c *converter) outputName(in string) string {
	if in == "-" {
		return flatcsv.DownloadName(c.now(), c.format)
	}
	base := filepath.Base(in)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + c.format
}

func writeCSVFile(path string, ds *flatcsv.Dataset, opt flatcsv.Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return flatcsv.EncodeTo(f, ds, opt)
}

func serveCmd(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	var addr string
	common.register(fs)
	fs.StringVar(&addr, "addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return 2
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	opt, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return 2
	}
	logger := cfg.Logger(stderr)

	srv, err := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		GinMode:         cfg.Server.GinMode,
		ReadTimeout:     cfg.Server.ReadTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Options:         opt,
	}, logger)
	if err != nil {
		logger.Error("server setup failed", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

func sampleCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var asCSV bool
	fs.BoolVar(&asCSV, "csv", false, "print the converted CSV instead of the JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if !asCSV {
		fmt.Fprintln(stdout, flatcsv.SampleJSON)
		return 0
	}
	conv, err := flatcsv.Convert(flatcsv.SampleJSON)
	if err != nil {
		fmt.Fprintf(stderr, "sample: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, conv.CSV)
	return 0
}
