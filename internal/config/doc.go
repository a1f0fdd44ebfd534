// Package config loads request collections and turns their entries into
// http.Request values.
//
// A collection file, JSON or YAML, defines:
//   - Environments: a base URL, default headers and variables per target
//   - Requests: named request templates with query, body or form, timeout,
//     allowed status, JSON schema and extraction rules
//   - Suites: ordered lists of requests sharing variables
//   - Schemas: named JSON schemas requests can refer to
//
// Basic Usage:
//
//	cfg, err := config.LoadConfig("api.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req, err := config.BuildRequest(cfg, "dev", "getUser", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := req.Do(ctx)
//
// Variable Substitution:
//
// Variables are written {{variableName}} in URLs, URL params, query values,
// headers and bodies. Values passed to BuildRequest override the
// environment's.
//
//	url := config.ProcessEnvironment(req.URL, env.Vars)
//
// Configuration Validation:
//
// ValidateConfig returns every problem it finds, each with a dotted path:
//
//	for _, err := range config.ValidateConfig(cfg) {
//	    log.Printf("Validation error: %s", err)
//	}
package config
