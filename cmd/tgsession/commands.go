package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/tgsession"
	"github.com/MrEthical07/tgsession/batch"
)

func rootCmd(a *app) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "tgsession",
		Short:         "Detect and convert Telegram client sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.readConfigFile(configFile); err != nil {
				return err
			}
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.Bool("test-mode", false, "resolve datacenters from the test network table")
	flags.Bool("media", false, "prefer media-only datacenter endpoints")
	flags.String("passcode", "", "Telegram Desktop local passcode")
	flags.String("redis-addr", "", "redis address for stored sessions")
	flags.BoolVar(&a.printMetrics, "print-metrics", false, "print metrics in Prometheus text format to stderr on exit")

	a.bind("log.level", flags.Lookup("log-level"))
	a.bind("datacenter.test_mode", flags.Lookup("test-mode"))
	a.bind("datacenter.media", flags.Lookup("media"))
	a.bind("tdata.passcode", flags.Lookup("passcode"))
	a.bind("store.redis_addr", flags.Lookup("redis-addr"))

	root.AddCommand(
		newDetectCmd(a),
		newInspectCmd(a),
		newConvertCmd(a),
		newBatchCmd(a),
	)
	return root
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <path-or-string>",
		Short: "Print the detected session format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.conv.Detect(a.context(cmd.Context()), args[0])
			fmt.Fprintln(a.stdout, f)
			if f == tgsession.FormatUnknown {
				return tgsession.ErrUnsupportedFormat
			}
			return nil
		},
	}
}

type attemptView struct {
	Format  string `json:"format"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type reportView struct {
	Source   string        `json:"source"`
	Format   string        `json:"format"`
	Attempts []attemptView `json:"attempts"`
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <path-or-string>",
		Short: "Print every detection attempt as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := a.conv.Inspect(a.context(cmd.Context()), args[0])
			view := reportView{
				Source:   rep.Source.String(),
				Format:   rep.Format.String(),
				Attempts: make([]attemptView, 0, len(rep.Attempts)),
			}
			for _, at := range rep.Attempts {
				av := attemptView{Format: at.Format.String(), Outcome: at.Outcome.String()}
				if at.Err != nil {
					av.Error = at.Err.Error()
				}
				view.Attempts = append(view.Attempts, av)
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		from   string
		output string
		store  bool
	)
	cmd := &cobra.Command{
		Use:   "convert <path-or-string>",
		Short: "Convert a session to the canonical layout",
		Long: "Convert a session file, tdata directory or string session. Without -o the\n" +
			"result is written to stdout as standard base64.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.context(cmd.Context())
			input := args[0]

			if store {
				if !strings.EqualFold(from, "auto") {
					return errors.New("--store only supports --from auto")
				}
				id, f, err := a.conv.ConvertAndStore(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s %s\n", f, id)
				return nil
			}

			var (
				out []byte
				err error
			)
			switch strings.ToLower(from) {
			case "auto":
				out, err = a.conv.Convert(ctx, input)
			default:
				var f tgsession.Format
				if f, err = tgsession.ParseFormat(from); err != nil {
					return err
				}
				out, err = convertAs(a, cmd, f, input)
			}
			if err != nil {
				return err
			}
			return writeSession(a, output, out)
		},
	}
	cmd.Flags().StringVar(&from, "from", "auto", "source format: auto, telethon, pyrogram, tdata")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&store, "store", false, "save the result in redis and print its id")
	return cmd
}

func convertAs(a *app, cmd *cobra.Command, f tgsession.Format, input string) ([]byte, error) {
	ctx := a.context(cmd.Context())
	switch f {
	case tgsession.FormatTelethon:
		return a.conv.ConvertTelethon(ctx, input)
	case tgsession.FormatPyrogram:
		return a.conv.ConvertPyrogram(ctx, input)
	case tgsession.FormatTData:
		return a.conv.ConvertTData(ctx, input)
	default:
		return nil, fmt.Errorf("%w: %s", tgsession.ErrUnsupportedFormat, f)
	}
}

func writeSession(a *app, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(a.stdout, base64.StdEncoding.EncodeToString(data))
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

type manifestEntry struct {
	Source string `json:"source"`
	Format string `json:"format"`
	Proxy  string `json:"proxy"`
	File   string `json:"file"`
}

func newBatchCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "batch <sessions-dir> <proxies-file>",
		Short: "Convert every entry of a directory, pairing each with a proxy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.context(cmd.Context())
			creds, err := batch.FromDirectory(ctx, a.conv, args[0], args[1], batch.Options{
				Workers: a.conv.Config().Batch.Workers,
			})
			if err != nil {
				return err
			}
			if err := os.MkdirAll(output, 0o700); err != nil {
				return err
			}

			manifest := make([]manifestEntry, 0, len(creds))
			for _, c := range creds {
				name := filepath.Base(c.Path) + ".bin"
				if err := os.WriteFile(filepath.Join(output, name), c.Session, 0o600); err != nil {
					return err
				}
				manifest = append(manifest, manifestEntry{
					Source: c.Path,
					Format: c.Format.String(),
					Proxy:  c.Proxy,
					File:   name,
				})
			}

			data, err := json.MarshalIndent(manifest, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(output, "credentials.json"), data, 0o600); err != nil {
				return err
			}
			a.log.Info().Int("converted", len(creds)).Str("output", output).Msg("batch complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out", "output directory")
	return cmd
}
