package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	yeahttp "github.com/wesleyorama2/yea/http"
	"github.com/wesleyorama2/yea/internal/output"
	"github.com/wesleyorama2/yea/internal/rate"
	"github.com/wesleyorama2/yea/internal/stats"
	"github.com/wesleyorama2/yea/pkg/selector"
)

// requestOptions holds the flags of the method commands.
type requestOptions struct {
	headers []string
	query   []string
	data    string
	json    string
	form    []string
	timeout time.Duration
	baseURL string
	status  string
	raw     bool
	prop    string
	css     string
	xpath   string
	verbose bool
	repeat  int
	rate    float64
}

func newRequestCmd(global *globalOptions, method string) *cobra.Command {
	opts := &requestOptions{}
	name := strings.ToLower(method)
	withBody := method != "GET" && method != "HEAD" && method != "DELETE"

	cmd := &cobra.Command{
		Use:   name + " URL",
		Short: fmt.Sprintf("Make a %s request to the specified URL", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, global, opts, method, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "HTTP headers as name:value (can be used multiple times)")
	flags.StringArrayVarP(&opts.query, "query", "q", nil, "Query parameters as key=value (can be used multiple times)")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 30*time.Second, "Request timeout (0 disables it)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Base URL the request URL is resolved against")
	flags.StringVar(&opts.status, "status", "", "Allowed status: a code or a regular expression (default any 2xx)")
	flags.BoolVar(&opts.raw, "raw", false, "Do not decode JSON responses")
	flags.StringVar(&opts.prop, "prop", "", "Print only this property of the response, e.g. data.items[0].id")
	flags.StringVar(&opts.css, "css", "", "Select HTML elements with a CSS selector")
	flags.StringVar(&opts.xpath, "xpath", "", "Select HTML nodes with an XPath expression")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	flags.IntVar(&opts.repeat, "repeat", 1, "Send the request this many times and print latency percentiles")
	flags.Float64Var(&opts.rate, "rate", 0, "Requests per second when repeating (0 sends back to back)")
	if withBody {
		flags.StringVarP(&opts.data, "data", "d", "", "Raw request body")
		flags.StringVar(&opts.json, "json", "", "JSON request body")
		flags.StringArrayVar(&opts.form, "form", nil, "Form fields as key=value (can be used multiple times)")
	}

	return cmd
}

func runRequest(cmd *cobra.Command, global *globalOptions, opts *requestOptions, method, rawURL string) error {
	if opts.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	if opts.rate < 0 {
		return fmt.Errorf("--rate cannot be negative")
	}

	recorder := stats.NewRecorder()
	base, err := global.baseRequest(opts.timeout, recorder)
	if err != nil {
		return err
	}

	req, err := buildCLIRequest(base, opts, method, rawURL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	formatter := global.formatter(opts.verbose)
	if opts.prop == "" {
		fmt.Fprint(out, formatter.FormatRequest(req.Config()))
	}

	var (
		resp    *yeahttp.Response
		sendErr error
	)
	pace := newPacer(opts.rate)
	for i := 0; i < opts.repeat; i++ {
		if err := pace.wait(cmd.Context()); err != nil {
			return err
		}
		resp, sendErr = req.Do(cmd.Context())
	}
	if opts.verbose && opts.prop == "" {
		pace.report(out)
	}

	if opts.repeat > 1 {
		defer func() {
			rows := append(recorder.Stats(), recorder.Total())
			if err := output.WriteLatencyTable(out, rows); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error writing summary: %v\n", err)
			}
		}()
	}

	return printResult(out, formatter, opts.prop, resp, sendErr)
}

func printResult(out io.Writer, formatter output.FormatProvider, prop string, resp *yeahttp.Response, err error) error {
	if err != nil {
		fmt.Fprint(out, formatter.FormatError(err))
		return err
	}

	if prop == "" {
		fmt.Fprint(out, formatter.FormatResponse(resp))
		return nil
	}

	value, err := resp.Prop(prop)
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatter.FormatValue(value))
	return nil
}

// buildCLIRequest applies the method command flags to base.
func buildCLIRequest(base yeahttp.Request, opts *requestOptions, method, rawURL string) (yeahttp.Request, error) {
	r, err := base.Method(method)
	if err != nil {
		return r, err
	}

	if opts.baseURL != "" {
		r = r.BaseURL(opts.baseURL)
	} else if !yeahttp.IsAbsoluteURL(rawURL) {
		rawURL = "http://" + rawURL
	}
	r = r.URL(rawURL)

	if len(opts.query) > 0 {
		params, err := parsePairs(opts.query)
		if err != nil {
			return r, errors.Wrap(err, "invalid query parameter")
		}
		if r, err = r.Query(params); err != nil {
			return r, err
		}
	}

	for _, h := range opts.headers {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			return r, fmt.Errorf("invalid header %q, expected name:value", h)
		}
		if r, err = r.AmendHeaders(map[string]interface{}{
			strings.TrimSpace(parts[0]): strings.TrimSpace(parts[1]),
		}); err != nil {
			return r, err
		}
	}

	if r, err = applyBody(r, opts); err != nil {
		return r, err
	}

	if opts.status != "" {
		var spec interface{} = opts.status
		if code, convErr := strconv.Atoi(opts.status); convErr == nil {
			spec = code
		}
		if r, err = r.SetAllowedStatusCode(spec); err != nil {
			return r, err
		}
	}

	if opts.raw {
		if r, err = r.SetResponseTransformers(nil); err != nil {
			return r, err
		}
	}

	if opts.css != "" {
		t, err := selector.CSSField("css", opts.css)
		if err != nil {
			return r, err
		}
		if r, err = r.AddResponseTransformer(t); err != nil {
			return r, err
		}
	}
	if opts.xpath != "" {
		t, err := selector.XPathField("xpath", opts.xpath)
		if err != nil {
			return r, err
		}
		if r, err = r.AddResponseTransformer(t); err != nil {
			return r, err
		}
	}

	return r, nil
}

func applyBody(r yeahttp.Request, opts *requestOptions) (yeahttp.Request, error) {
	set := 0
	for _, given := range []bool{opts.data != "", opts.json != "", len(opts.form) > 0} {
		if given {
			set++
		}
	}
	if set > 1 {
		return r, fmt.Errorf("only one of --data, --json and --form can be used")
	}

	switch {
	case opts.data != "":
		return r.Body(opts.data)
	case opts.json != "":
		var v interface{}
		if err := json.Unmarshal([]byte(opts.json), &v); err != nil {
			return r, errors.Wrap(err, "invalid --json body")
		}
		return r.JSON(v)
	case len(opts.form) > 0:
		fields, err := parsePairs(opts.form)
		if err != nil {
			return r, errors.Wrap(err, "invalid form field")
		}
		return r.URLEncoded(fields)
	}
	return r, nil
}

// parsePairs splits "key=value" arguments, keeping their order.
func parsePairs(pairs []string) (*yeahttp.Params, error) {
	params := yeahttp.NewParams()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q, expected key=value", pair)
		}
		params.Add(key, value)
	}
	return params, nil
}

// pacer spaces repeated dispatches. The zero value does not wait.
type pacer struct {
	bucket *rate.LeakyBucket
}

func newPacer(perSecond float64) pacer {
	if perSecond <= 0 {
		return pacer{}
	}
	return pacer{bucket: rate.NewLeakyBucket(perSecond)}
}

func (p pacer) wait(ctx context.Context) error {
	if p.bucket == nil {
		return nil
	}
	return p.bucket.Wait(ctx)
}

// report writes how the dispatches were paced. Nothing is written when
// pacing is off.
func (p pacer) report(w io.Writer) {
	if p.bucket == nil {
		return
	}
	st := p.bucket.Stats()
	fmt.Fprintf(w, "Paced %d requests at %.2f/s, waited %s\n",
		st.Scheduled, st.Rate, st.Waited.Round(time.Millisecond))
}
