package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	yeahttp "github.com/wesleyorama2/yea/http"
	"github.com/wesleyorama2/yea/internal/config"
	"github.com/wesleyorama2/yea/internal/output"
	"github.com/wesleyorama2/yea/internal/stats"
	"github.com/wesleyorama2/yea/pkg/jsonpath"
	"github.com/wesleyorama2/yea/pkg/metrics"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	configFile  string
	environment string
	request     string
	suite       string
	vars        []string
	verbose     bool
	timeout     time.Duration
	repeat      int
	rate        float64
	metricsFile string
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run requests or suites from a collection file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollection(cmd, global, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Collection file (JSON or YAML)")
	flags.StringVarP(&opts.environment, "environment", "e", "", "Environment to use")
	flags.StringVarP(&opts.request, "request", "r", "", "Request to execute")
	flags.StringVarP(&opts.suite, "suite", "s", "", "Suite to execute")
	flags.StringArrayVar(&opts.vars, "var", nil, "Variables as key=value, overriding the environment (can be used multiple times)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 30*time.Second, "Default request timeout")
	flags.IntVar(&opts.repeat, "repeat", 1, "Run the requests this many times and print latency percentiles")
	flags.Float64Var(&opts.rate, "rate", 0, "Requests per second across the run (0 sends back to back)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagsOneRequired("request", "suite")
	cmd.MarkFlagsMutuallyExclusive("request", "suite")

	return cmd
}

// runner executes collection requests in order, feeding extracted values
// into the variables of later requests.
type runner struct {
	cfg       *config.Config
	env       string
	base      yeahttp.Request
	vars      map[string]string
	formatter output.FormatProvider
	out       io.Writer
	log       logrus.FieldLogger
	recorder  *stats.Recorder
	pacer     pacer
	verbose   bool
}

func runCollection(cmd *cobra.Command, global *globalOptions, opts *runOptions) error {
	if opts.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	if opts.rate < 0 {
		return fmt.Errorf("--rate cannot be negative")
	}

	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return errors.Wrap(err, "error loading config")
	}

	if validationErrors := config.ValidateConfig(cfg); len(validationErrors) > 0 {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, "Configuration validation errors:")
		for _, e := range validationErrors {
			fmt.Fprintf(errOut, "  - %s\n", e.Error())
		}
		return fmt.Errorf("invalid configuration: %d errors", len(validationErrors))
	}

	if opts.environment != "" {
		if err := config.ValidateEnvironment(cfg, opts.environment); err != nil {
			return err
		}
	}

	names := []string{opts.request}
	vars := map[string]string{}
	if opts.suite != "" {
		if err := config.ValidateSuite(cfg, opts.suite); err != nil {
			return err
		}
		suite := cfg.Suites[opts.suite]
		names = suite.Requests
		vars = config.MergeEnvironments(vars, suite.Vars)
	} else if err := config.ValidateRequest(cfg, opts.request); err != nil {
		return err
	}

	cliVars, err := parsePairs(opts.vars)
	if err != nil {
		return errors.Wrap(err, "invalid variable")
	}
	for _, key := range cliVars.Keys() {
		values := cliVars.Get(key)
		vars[key] = values[len(values)-1]
	}

	var collector *metrics.Collector
	var observers []yeahttp.Observer
	if opts.metricsFile != "" {
		collector = metrics.NewCollector()
		observers = append(observers, collector)
	}
	base, err := global.baseRequest(opts.timeout, observers...)
	if err != nil {
		return err
	}

	r := &runner{
		cfg:       cfg,
		env:       opts.environment,
		base:      base,
		vars:      vars,
		formatter: global.formatter(opts.verbose),
		out:       cmd.OutOrStdout(),
		log:       global.logger.WithField("config", opts.configFile),
		recorder:  stats.NewRecorder(),
		pacer:     newPacer(opts.rate),
		verbose:   opts.verbose,
	}

	var results []output.RunResult
	for i := 0; i < opts.repeat; i++ {
		results = append(results, r.executeAll(cmd.Context(), names)...)
	}

	if collector != nil {
		if err := collector.WriteToFile(opts.metricsFile); err != nil {
			return err
		}
	}

	if global.outFormat == output.FormatText {
		fmt.Fprintln(r.out)
		if err := output.WriteRunSummary(r.out, results, global.noColor); err != nil {
			return err
		}
		if opts.repeat > 1 {
			rows := append(r.recorder.Stats(), r.recorder.Total())
			if err := output.WriteLatencyTable(r.out, rows); err != nil {
				return err
			}
		}
		if r.verbose {
			r.pacer.report(r.out)
		}
	}

	failed := 0
	for _, res := range results {
		if !res.Passed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(results))
	}
	return nil
}

func (r *runner) executeAll(ctx context.Context, names []string) []output.RunResult {
	results := make([]output.RunResult, 0, len(names))
	for _, name := range names {
		results = append(results, r.execute(ctx, name))
	}
	return results
}

// execute runs one named request. Extraction failures fail the request but
// keep whatever values could be extracted.
func (r *runner) execute(ctx context.Context, name string) output.RunResult {
	result := output.RunResult{Name: name}

	req, err := config.BuildRequestFrom(r.base, r.cfg, r.env, name, r.vars)
	if err != nil {
		result.Err = err
		fmt.Fprint(r.out, r.formatter.FormatError(err))
		return result
	}

	if err := r.pacer.wait(ctx); err != nil {
		result.Err = err
		return result
	}

	rc := req.Config()
	result.Method = rc.Method
	result.URL = rc.ComposedURL()
	fmt.Fprint(r.out, r.formatter.FormatRequest(rc))

	start := time.Now()
	resp, err := req.Do(ctx)
	result.Duration = time.Since(start)
	r.recorder.Record(name, result.Duration, err == nil)

	if err != nil {
		var reqErr *yeahttp.RequestError
		if errors.As(err, &reqErr) {
			result.Status = reqErr.Status
		}
		result.Err = err
		fmt.Fprint(r.out, r.formatter.FormatError(err))
		return result
	}

	result.Status = resp.Status
	fmt.Fprint(r.out, r.formatter.FormatResponse(resp))

	if extract := r.cfg.Requests[name].Extract; len(extract) > 0 {
		extracted, err := jsonpath.ExtractMultiple(resp.Body, extract)
		for key, value := range extracted {
			r.vars[key] = value
			r.log.WithFields(logrus.Fields{"request": name, "variable": key}).Debug("Extracted variable")
			if r.verbose {
				fmt.Fprintf(r.out, "Extracted variable %s = %s\n", key, value)
			}
		}
		if err != nil {
			result.Err = errors.Wrap(err, "variable extraction failed")
		}
	}

	return result
}
