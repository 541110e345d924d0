package cmd

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tomlconfig "github.com/bnema/orderlink/internal/adapters/config/toml"
	statusadapter "github.com/bnema/orderlink/internal/adapters/render/status"
	"github.com/bnema/orderlink/internal/adapters/transport/uart"
	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/logging"
	"github.com/bnema/orderlink/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	configKey = "config"
	envPrefix = "ORDERLINK"
)

var openSerialPort = uart.OpenSerial

type app struct {
	cfg            *viper.Viper
	statusRenderer func(application.Snapshot, statusadapter.RenderOptions) (string, error)
	openPort       func(path string, opts uart.PortOptions) (uart.Port, error)
	httpClient     *http.Client
	now            func() time.Time

	loadOnce sync.Once
	profile  tomlconfig.Profile
	loadErr  error
}

func newApp(cfg *viper.Viper) *app {
	return &app{
		cfg:            cfg,
		statusRenderer: statusadapter.Render,
		openPort:       openSerialPort,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		now:            time.Now,
	}
}

// loadProfile reads the profile on first use, after flags are parsed.
func (a *app) loadProfile() (tomlconfig.Profile, error) {
	a.loadOnce.Do(func() {
		a.profile, a.loadErr = tomlconfig.Load(a.cfg)
		if a.loadErr != nil {
			a.loadErr = fmt.Errorf("load profile: %w", a.loadErr)
		}
	})
	return a.profile, a.loadErr
}

func (a *app) newLogger(profile tomlconfig.Profile, out io.Writer) (zerolog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  profile.Log.Level,
		Format: profile.Log.Format,
		Out:    out,
	})
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("configure logging: %w", err)
	}
	return logger, nil
}

// peripheralStack is the application core wired against one transport.
type peripheralStack struct {
	registry   *application.Registry
	peripheral *application.Peripheral
}

func wirePeripheral(profile tomlconfig.Profile, transport ports.Transport, metrics ports.Metrics, logger zerolog.Logger) (peripheralStack, error) {
	codec, err := profile.Codec()
	if err != nil {
		return peripheralStack{}, fmt.Errorf("wire frame codec: %w", err)
	}

	registry := application.NewRegistry(codec, ports.SystemClock{}, metrics, logger.With().Str("module", "registry").Logger())
	chunker := application.NewChunker(codec, transport, profile.Framing.FragmentSize, metrics, logger.With().Str("module", "chunker").Logger())
	peripheral := application.NewPeripheral(profile.PeripheralConfig(), registry, chunker, transport, logger.With().Str("module", "peripheral").Logger())

	return peripheralStack{
		registry:   registry,
		peripheral: peripheral,
	}, nil
}
