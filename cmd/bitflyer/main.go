// Command bitflyer performs one API call and prints the JSON response.
//
//	bitflyer [flags] <endpoint> [key=value ...]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/logrusorgru/aurora"
	"github.com/samvad-hq/bitflyer-go/internal/app"
	"github.com/samvad-hq/bitflyer-go/internal/config"
	"github.com/samvad-hq/bitflyer-go/internal/logger"
	"github.com/samvad-hq/bitflyer-go/pkg/bitflyer"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var errUsage = errors.New("usage: bitflyer [flags] <endpoint> [key=value ...]")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "bitflyer: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("bitflyer", pflag.ContinueOnError)
	fs.String("base-url", "", "API host")
	fs.String("api-key", "", "API key (or BITFLYER_API_KEY)")
	fs.String("api-secret", "", "API secret (or BITFLYER_API_SECRET)")
	fs.Int64("timeout", 0, "request timeout in seconds")
	fs.Int("retry", 0, "retries on transient failures")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	list := fs.Bool("list", false, "list endpoints and exit")
	noColor := fs.Bool("no-color", false, "disable colored listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		return printEndpoints(out, aurora.NewAurora(!*noColor))
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	v := viper.New()
	bindings := map[string]string{
		"bitflyer_base_url":       "base-url",
		"bitflyer_api_key":        "api-key",
		"bitflyer_api_secret":     "api-secret",
		"request_timeout_seconds": "timeout",
		"retry_count":             "retry",
		"log_level":               "log-level",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	// Keep stdout for the response body.
	v.Set("log_output", "stderr")
	v.Set("keep_session", false)

	cfg, err := config.LoadWith(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	params, err := parseParams(fs.Args()[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := app.NewClient(cfg, log)
	defer client.Close()

	result, err := client.CallByName(ctx, fs.Arg(0), params)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

// parseParams turns key=value pairs into call parameters. Values that parse
// as JSON (numbers, booleans, objects, arrays) keep their JSON type.
func parseParams(pairs []string) (bitflyer.Params, error) {
	params := bitflyer.Params{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", pair)
		}
		var val any
		if err := json.Unmarshal([]byte(raw), &val); err != nil {
			val = raw
		}
		params[key] = val
	}
	return params, nil
}

func printEndpoints(out io.Writer, au aurora.Aurora) error {
	for _, ep := range bitflyer.Endpoints() {
		access := au.Green("public ")
		if ep.Private {
			access = au.Yellow("private")
		}
		if _, err := fmt.Fprintf(out, "%-26s %-4s %s %s\n", au.Bold(ep.Name), ep.Method, access, ep.Path); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitCode(err error) int {
	switch bitflyer.KindOf(err) {
	case bitflyer.KindAuthentication:
		return 2
	case bitflyer.KindTransport:
		return 3
	case bitflyer.KindDecode:
		return 4
	case bitflyer.KindAPI:
		return 5
	default:
		return 1
	}
}
