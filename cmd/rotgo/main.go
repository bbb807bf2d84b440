package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cjeanneret/RotGo/internal/config"
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/encoder"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
	"github.com/cjeanneret/RotGo/internal/hw/limit"
	"github.com/cjeanneret/RotGo/internal/hw/motor"
	"github.com/cjeanneret/RotGo/internal/logic/axis"
	"github.com/cjeanneret/RotGo/internal/logic/runloop"
	"github.com/cjeanneret/RotGo/internal/notify"
	"github.com/cjeanneret/RotGo/internal/proto"
	"github.com/cjeanneret/RotGo/internal/transport"
	"github.com/cjeanneret/RotGo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start monitor server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	mock := flag.Bool("mock", false, "force mock GPIO regardless of config")
	eventAddr := flag.String("event_addr", "", "override client address for position events")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *mock {
		cfg.Defaults.MockGPIO = true
	}
	if *eventAddr != "" {
		cfg.Network.EventAddr = *eventAddr
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Build both axes
	debug.Step(2, "Initializing axes")
	az := newAxis("az", gpioDriver, cfg.Azimuth, cfg)
	debug.PrintStruct("Azimuth config", cfg.Azimuth)
	el := newAxis("el", gpioDriver, cfg.Elevation, cfg)
	debug.PrintStruct("Elevation config", cfg.Elevation)

	// Bind the datagram transport
	debug.Step(3, "Binding transport")
	conn, err := transport.Listen(cfg.Network.RequestAddr, cfg.Network.EventAddr)
	if err != nil {
		log.Fatalf("bind transport failed: %v", err)
	}
	defer conn.Close()

	azNtf := notify.New("az", cfg.Defaults.DeadbandDeg, az.Position(), conn)
	elNtf := notify.New("el", cfg.Defaults.DeadbandDeg, el.Position(), conn)

	disp := proto.NewDispatcher(az, el)
	loop := runloop.New(conn, disp, az, el, azNtf, elNtf, cfg.Tick())

	g, ctx := errgroup.WithContext(ctx)

	if port := webPort.port(); port > 0 {
		broadcaster := web.NewLogBroadcaster()
		status := web.NewStatusStore()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
		loop.SetStatusSink(status)

		srv := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, status)
		g.Go(func() error { return srv.Run(ctx) })
	}

	debug.Section("Controller Running")
	g.Go(func() error { return loop.Run(ctx) })

	if err := g.Wait(); err != nil {
		log.Fatalf("controller failed: %v", err)
	}
}

// newAxis wires one axis controller from its pins and parameters.
func newAxis(name string, g gpio.Driver, ac config.AxisConfig, cfg *config.Config) *axis.Axis {
	m := motor.New(g, motor.Config{
		Name:   name,
		DirPin: ac.DirPin,
		PWMPin: ac.PWMPin,
	})
	enc := encoder.New(g, encoder.Config{
		Name:    name,
		Channel: ac.SensorChannel,
		SpanDeg: ac.SpanDeg,
	})
	lim := limit.New(g, ac.FwdLimitPin, ac.RevLimitPin)

	return axis.New(axis.Config{
		Name:         name,
		SpanDeg:      ac.SpanDeg,
		SpeedPct:     ac.SpeedPct,
		BackoffPct:   ac.BackoffPct,
		CalSpeedPct:  ac.CalSpeedPct,
		ProximityDeg: cfg.Defaults.ProximityDeg,
		ToleranceDeg: cfg.Defaults.ToleranceDeg,
		NudgeDeg:     cfg.Defaults.NudgeDeg,
		CalTicks:     cfg.CalTicks(),
		MoveTicks:    cfg.MoveTicks(),
	}, m, enc, lim)
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
