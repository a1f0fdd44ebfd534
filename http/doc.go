// Package http provides an immutable, fluent HTTP request builder and a
// dispatcher that returns a promise of the response.
//
// This package is designed for programmatic use and provides:
//   - An immutable Request builder; every method returns a new value
//   - Query and form encoding from maps, ordered Params and tagged structs
//   - Status policies (exact code, pattern or predicate)
//   - A response transformer chain, with JSON decoding by default
//   - Detailed timing information (DNS, TCP, TLS, TTFB) from the default transport
//
// Basic Usage:
//
//	api := http.New().
//	    BaseURL("https://api.example.com").
//	    Header("Authorization", "Bearer token")
//
//	resp, err := api.Get("/users?limit=10").Do(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.Status)
//	fmt.Printf("TTFB: %v\n", resp.Timing.TimeToFirstByte)
//
// Auth Token Example:
//
//	p := http.New().
//	    Post("https://auth.example.com/oauth/token").
//	    SendURLEncoded(map[string]string{
//	        "grant_type":    "client_credentials",
//	        "client_id":     "xxx",
//	        "client_secret": "yyy",
//	    })
//
//	resp, err := p.Await(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	token, _ := resp.Prop("data.access_token")
//
// Errors:
//
// Builder methods that validate their input return (Request, error); the
// error is a *RequestError of kind KindInvalidArgument. Dispatch failures are
// delivered through the promise as *RequestError values and can be matched
// with errors.Is against ErrRequestFailed, ErrRequestTimeout, ErrTransform
// and ErrTransport.
//
// Thread Safety:
//
// Request values are immutable and safe for concurrent use. Multiple
// goroutines may derive from and send the same Request simultaneously.
package http
