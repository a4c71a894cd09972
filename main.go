package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/capture"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var runFlags = []cli.Flag{
	&cli.StringFlag{Name: "config", Usage: "YAML file with the run options"},
	&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "sender or receiver"},
	&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "the payload file, the receiver compares against it"},
	&cli.StringFlag{Name: "field", Usage: "flow-label or hop-limit"},
	&cli.Uint64Flag{Name: "consecutive_clean", Aliases: []string{"p"}, Usage: "clean packets between two stego bursts"},
	&cli.Uint64Flag{Name: "consecutive_stego", Aliases: []string{"l"}, Usage: "stego packets in one burst"},
	&cli.Uint64Flag{Name: "repetitions", Usage: "sessions to run, 0 for the role default"},
	&cli.UintFlag{Name: "queue", Aliases: []string{"q"}, Usage: "netfilter queue number"},
	&cli.StringFlag{Name: "pcap-in", Usage: "replay packets from a capture instead of the netfilter queue"},
	&cli.StringFlag{Name: "pcap-out", Usage: "write the accepted packets of a replay to a capture"},
	&cli.StringFlag{Name: "results-dir", Usage: "directory of the results CSV files"},
	&cli.StringFlag{Name: "sqlite", Usage: "SQLite database keeping every session"},
	&cli.StringFlag{Name: "listen", Usage: "address of the websocket feed, e.g. :3000"},
	&cli.StringSliceFlag{Name: "processor", Usage: "payload processor, applied in order (None, Checksum, GZipCompression, ZLibCompression, ZStdCompression)"},
	&cli.BoolFlag{Name: "debug", Usage: "log every delimiter"},
	&cli.BoolFlag{Name: "json-log", Usage: "log JSON lines to stdout"},
}

var synthCommand = &cli.Command{
	Name:      "synth",
	Usage:     "writes a capture of IPv6/UDP packets for offline runs",
	UsageText: "synth --out FILE [--count N]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true},
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1000},
		&cli.StringFlag{Name: "src", Value: "fd00::1"},
		&cli.StringFlag{Name: "dst", Value: "fd00::2"},
		&cli.UintFlag{Name: "hop-limit", Value: 64},
	},
	Action: synthCmd,
}

func main() {
	app := &cli.App{
		Name:     "covert6",
		Usage:    "IPv6 header covert channel over a netfilter queue",
		Flags:    runFlags,
		Action:   runCmd,
		Commands: []*cli.Command{synthCommand},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}

// options reads the config file and the environment, then the flags set
// on the command line override both
func options(c *cli.Context) (controller.Options, error) {
	opts := controller.DefaultOptions()
	if err := config.LoadFile(c.String("config"), &opts); err != nil {
		return opts, err
	}
	if c.IsSet("role") {
		opts.Role = c.String("role")
	}
	if c.IsSet("file") {
		opts.File = c.String("file")
	}
	if c.IsSet("field") {
		opts.Field = c.String("field")
	}
	if c.IsSet("consecutive_clean") {
		opts.ConsecutiveClean = c.Uint64("consecutive_clean")
	}
	if c.IsSet("consecutive_stego") {
		opts.ConsecutiveStego = c.Uint64("consecutive_stego")
	}
	if c.IsSet("repetitions") {
		opts.Repetitions = c.Uint64("repetitions")
	}
	if c.IsSet("queue") {
		if q := c.Uint("queue"); q > 0xFFFF {
			return opts, errors.New("Queue number out of range")
		} else {
			opts.Queue = uint16(q)
		}
	}
	if c.IsSet("pcap-in") {
		opts.PcapIn = c.String("pcap-in")
	}
	if c.IsSet("pcap-out") {
		opts.PcapOut = c.String("pcap-out")
	}
	if c.IsSet("results-dir") {
		opts.ResultsDir = c.String("results-dir")
	}
	if c.IsSet("sqlite") {
		opts.SQLite = c.String("sqlite")
	}
	if c.IsSet("listen") {
		opts.Listen = c.String("listen")
	}
	if c.IsSet("processor") {
		opts.Processors = c.StringSlice("processor")
	}
	return opts, nil
}

func openQueue(opts controller.Options) (capture.Queue, error) {
	if opts.PcapIn != "" {
		return capture.OpenPcap(opts.PcapIn, opts.PcapOut)
	}
	return capture.OpenNfQueue(opts.Queue)
}

// closeLogged runs a close and logs its failure
func closeLogged(what string, fn func() error) error {
	err := fn()
	if err != nil {
		log.Error().Err(err).Msg(what)
	}
	return err
}

func runCmd(c *cli.Context) error {
	log.Init(c.Bool("debug"), c.Bool("json-log"))
	opts, err := options(c)
	if err != nil {
		return err
	}

	ctr, err := controller.CreateController(opts)
	if err != nil {
		return err
	}
	defer closeLogged("controller shutdown", ctr.Shutdown)

	q, err := openQueue(opts)
	if err != nil {
		return err
	}
	defer closeLogged("queue close", q.Close)

	//Intercept the kill signal to ensure proper shutdown of the process
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if opts.Listen != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/ws", ctr.HandleFunc)
		srv := &http.Server{Addr: opts.Listen, Handler: mux}

		g.Go(func() error {
			log.Info().Str("addr", opts.Listen).Msg("websocket feed started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}
	g.Go(func() error {
		defer stop()
		return ctr.Run(ctx, q)
	})

	err = g.Wait()
	log.Info().Msg("shutting down")
	return err
}

func synthCmd(c *cli.Context) error {
	src, dst := net.ParseIP(c.String("src")), net.ParseIP(c.String("dst"))
	if src == nil || dst == nil {
		return errors.New("Invalid source or destination address")
	}
	if c.Uint("hop-limit") > 0xFF {
		return errors.New("Hop limit out of range")
	}
	packets, err := capture.Synthesize(c.Int("count"), src, dst, uint8(c.Uint("hop-limit")))
	if err != nil {
		return err
	}
	if err := capture.WritePcap(c.String("out"), packets); err != nil {
		return err
	}
	log.Info().Int("packets", len(packets)).Str("out", c.String("out")).Msg("capture written")
	return nil
}
