package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/komsit37/hscreen/pkg/hscreen/config"
	"github.com/komsit37/hscreen/pkg/hscreen/enrich"
	"github.com/komsit37/hscreen/pkg/hscreen/market"
	"github.com/komsit37/hscreen/pkg/hscreen/pipeline"
	"github.com/komsit37/hscreen/pkg/hscreen/ratio"
	"github.com/komsit37/hscreen/pkg/hscreen/render"
	"github.com/komsit37/hscreen/pkg/hscreen/source"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by all subcommands once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	noColor bool

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), log: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "hscreen",
		Short:         "Screen stocks against halal financial ratios",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./hscreen.yaml or ~/.config/hscreen/hscreen.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newScreenCmd(a), newCheckCmd(a), newSectorsCmd(a))
	return root
}

// flagKeys maps command flags onto config keys.
var flagKeys = map[string]string{
	"data":   "data",
	"output": "output.format",
	"pretty": "output.pretty",
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.Read(a.v, a.cfgFile); err != nil {
		return err
	}
	bindFlags(a.v, cmd.Flags())
	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	if a.noColor {
		cfg.Output.Color = false
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if cfg.Output.MaxColWidth <= 0 {
		cfg.Output.MaxColWidth = colWidth(detectTerminalWidth())
	}
	a.cfg = cfg
	a.log = newLogger(os.Stderr, cfg.Log.Level, cfg.Output.Color)
	a.log.Debug().Str("config", a.v.ConfigFileUsed()).Str("data", cfg.Data).Msg("configured")
	return nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func newLogger(w io.Writer, level string, color bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !color, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// colWidth picks a wrap width for text cells from the terminal width.
func colWidth(term int) int {
	if term <= 0 {
		return 0
	}
	w := term / 3
	switch {
	case w < 20:
		return 20
	case w > 60:
		return 60
	}
	return w
}

func (a *app) renderOptions() render.RenderOptions {
	return render.RenderOptions{
		Color:       a.cfg.Output.Color,
		PrettyJSON:  a.cfg.Output.Pretty,
		MaxColWidth: a.cfg.Output.MaxColWidth,
		Summary:     true,
	}
}

func (a *app) runner(w io.Writer) (*pipeline.Runner, error) {
	r, err := render.ForFormat(a.cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return &pipeline.Runner{
		Source:   source.NewCache(source.CSVSource{}),
		Renderer: r,
		Writer:   w,
		Log:      a.log,
	}, nil
}

func (a *app) ratioService() enrich.RatioService {
	y := a.cfg.Yahoo
	client := market.NewClient(
		market.WithBaseURL(y.BaseURL),
		market.WithTimeout(y.Timeout),
		market.WithRetries(y.Retries),
		market.WithRateLimit(y.RateLimit),
		market.WithLogger(a.log.With().Str("component", "market").Logger()),
	)
	calc := ratio.NewCalculator(client, ratio.WithLogger(a.log))
	return enrich.NewRatioCache(calc, a.cfg.Cache.TTL, a.cfg.Cache.Size)
}

func (a *app) quoteService() enrich.QuoteService {
	return enrich.NewCacheService(enrich.NewYFService(a.cfg.Yahoo.Timeout), a.cfg.Cache.TTL, a.cfg.Cache.Size)
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
