// Command espnauth signs in to ESPN fantasy sports through a real
// browser and prints the captured session cookie pair.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"espnauth/internal/auth"
	"espnauth/internal/browser"
)

var (
	flagEmail    string
	flagPassword string
	flagDebug    bool
	flagHeadful  bool
	flagChrome   string
	flagTimeout  time.Duration
	flagJSON     bool
	flagVerbose  bool
)

func main() {
	root := &cobra.Command{
		Use:           "espnauth",
		Short:         "Capture ESPN fantasy session credentials through a real browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the espn_s2/SWID cookie pair",
		RunE:  runLogin,
	}
	login.Flags().StringVarP(&flagEmail, "email", "e", "", "account email or username")
	login.Flags().StringVarP(&flagPassword, "password", "p", "", "account password")
	login.Flags().BoolVar(&flagDebug, "debug", false, "open a visible window and let a human complete the login")
	login.Flags().BoolVar(&flagHeadful, "headful", false, "run the browser visibly even in automated mode")
	login.Flags().StringVar(&flagChrome, "chrome", "", "path to the Chrome/Chromium binary (default: autodetect)")
	login.Flags().DurationVar(&flagTimeout, "timeout", 0, "override the overall attempt timeout")
	login.Flags().BoolVar(&flagJSON, "json", false, "print the result as JSON")
	login.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug-level logging")
	root.AddCommand(login)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	log := newLogger()

	if !flagDebug {
		if flagEmail == "" || flagPassword == "" {
			return fmt.Errorf("--email and --password are required unless --debug is set")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bcfg := browser.DefaultConfig()
	bcfg.ExecPath = flagChrome
	mgr := browser.NewManager(bcfg, log)
	defer mgr.Shutdown()

	acfg := auth.DefaultConfig()
	if flagTimeout > 0 {
		acfg.OverallTimeout = flagTimeout
	}

	mode := auth.ModeAutomated
	if flagDebug {
		mode = auth.ModeDebug
		log.Info().Msg("debug mode: complete the login in the browser window")
	} else if flagHeadful {
		if err := mgr.Start(ctx, true); err != nil {
			return err
		}
	}

	res := auth.New(mgr, acfg, log).Authenticate(ctx, flagEmail, flagPassword, mode)
	return printResult(res)
}

func printResult(res auth.Result) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		if !res.OK() {
			os.Exit(2)
		}
		return nil
	}

	if !res.OK() {
		return fmt.Errorf("%s: %s", res.Failure.Kind, res.Failure.Message)
	}

	fmt.Println("espn_s2 =", res.Session.EspnS2)
	fmt.Println("SWID    =", res.Session.SWID)
	for _, l := range res.Leagues {
		fmt.Printf("league  = %s (%s, %s %s)\n", l.Name, l.ID, l.Sport, l.Season)
	}
	return nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
