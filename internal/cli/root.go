package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	yeahttp "github.com/wesleyorama2/yea/http"
	"github.com/wesleyorama2/yea/internal/logging"
	"github.com/wesleyorama2/yea/internal/output"
)

var version = "0.1.0"

// globalOptions holds the persistent flags and what PersistentPreRunE
// builds from them.
type globalOptions struct {
	logLevel  string
	logFormat string
	logFile   string
	noColor   bool
	format    string

	logger    *logging.Logger
	outFormat output.OutputFormat
}

// NewRootCmd builds the yea command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:     "yea",
		Short:   "A terminal HTTP client built on an immutable request builder",
		Version: version,
		Long: `yea sends HTTP requests from the command line or from request collections,
validates responses against status policies and JSON schemas, and extracts
values from JSON and HTML bodies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logger != nil {
				return opts.logger.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")
	flags.StringVar(&opts.logFile, "log-file", "", "Also write logs to this file, rotated")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringVarP(&opts.format, "output", "o", "text", "Output format (text, json, yaml)")

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"} {
		cmd.AddCommand(newRequestCmd(opts, method))
	}
	cmd.AddCommand(newRunCmd(opts))

	return cmd
}

// Execute runs the root command, reporting any error on stderr.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func (o *globalOptions) setup(cmd *cobra.Command) error {
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return err
	}
	o.outFormat = format

	if !output.ColorEnabled(cmd.OutOrStdout()) {
		o.noColor = true
	}

	o.logger, err = logging.New(logging.Options{
		Level:      o.logLevel,
		Format:     o.logFormat,
		Console:    cmd.ErrOrStderr(),
		File:       o.logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
	return err
}

func (o *globalOptions) formatter(verbose bool) output.FormatProvider {
	return output.GetFormatter(o.outFormat, verbose, o.noColor)
}

// baseRequest is the request every command starts from.
func (o *globalOptions) baseRequest(timeout time.Duration, observers ...yeahttp.Observer) (yeahttp.Request, error) {
	p := yeahttp.Polyfills{Logger: o.logger.WithField("component", "dispatch")}
	switch len(observers) {
	case 0:
	case 1:
		p.Observer = observers[0]
	default:
		p.Observer = multiObserver(observers)
	}
	return yeahttp.New().Polyfills(p).Timeout(timeout)
}

type multiObserver []yeahttp.Observer

func (m multiObserver) ObserveExchange(method string, status int, outcome string, elapsed time.Duration) {
	for _, o := range m {
		o.ObserveExchange(method, status, outcome, elapsed)
	}
}
