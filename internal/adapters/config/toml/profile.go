package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	configName    = "config"
	configType    = "toml"
	configDir     = ".orderlink"
	configFile    = "config.toml"
	envPrefix     = "ORDERLINK"
	configPathKey = "config"
)

const (
	keyPeripheralName   = "peripheral.name"
	keyServiceUUID      = "peripheral.service_uuid"
	keyCharacteristic   = "peripheral.characteristic_uuid"
	keyCCCD             = "peripheral.cccd_uuid"
	keyFramingMode      = "framing.mode"
	keyTerminator       = "framing.terminator"
	keyFragmentSize     = "framing.fragment_size"
	keyMaxMessageBytes  = "framing.max_message_bytes"
	keyAckTemplate      = "responses.ack"
	keyCompleteTemplate = "responses.complete"
	keyLogLevel         = "log.level"
	keyLogFormat        = "log.format"
	keyDebugAddr        = "debug.addr"
	keyUARTPath         = "uart.path"
	keyUARTBaudRate     = "uart.baud_rate"
	keyUARTDataBits     = "uart.data_bits"
	keyUARTStopBits     = "uart.stop_bits"
	keyUARTParity       = "uart.parity"
)

const DefaultPeripheralName = "orderlink"

var ErrInvalidProfile = errors.New("invalid profile")

type PeripheralSettings struct {
	Name           string
	Service        uuid.UUID
	Characteristic uuid.UUID
	CCCD           uuid.UUID
}

type FramingSettings struct {
	Mode            framing.Mode
	Terminator      string
	FragmentSize    int
	MaxMessageBytes int
}

type ResponseSettings struct {
	Ack      string
	Complete string
}

type LogSettings struct {
	Level  string
	Format string
}

type UARTSettings struct {
	Path     string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// Profile is the resolved peripheral configuration: file values layered over
// defaults, with ORDERLINK_* environment overrides on top.
type Profile struct {
	Source     string
	Peripheral PeripheralSettings
	Framing    FramingSettings
	Responses  ResponseSettings
	Log        LogSettings
	DebugAddr  string
	UART       UARTSettings
}

// DefaultPath returns $HOME/.orderlink/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir, configFile), nil
}

// Load resolves the profile from cfg. When cfg names an explicit config file
// (key "config") it must exist; the default location may be absent.
func Load(cfg *viper.Viper) (Profile, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Profile{}, fmt.Errorf("resolve home directory: %w", err)
	}

	applyDefaults(cfg)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	cfg.AutomaticEnv()

	if explicit := cfg.GetString(configPathKey); explicit != "" {
		cfg.SetConfigFile(explicit)
		if err := cfg.ReadInConfig(); err != nil {
			return Profile{}, fmt.Errorf("read config file %s: %w", explicit, err)
		}
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(filepath.Join(homeDir, configDir))

		if err := cfg.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return Profile{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	return decode(cfg)
}

func applyDefaults(cfg *viper.Viper) {
	defaults := defaultSchema()

	cfg.SetDefault(keyPeripheralName, defaults.Peripheral.Name)
	cfg.SetDefault(keyServiceUUID, defaults.Peripheral.ServiceUUID)
	cfg.SetDefault(keyCharacteristic, defaults.Peripheral.CharacteristicUUID)
	cfg.SetDefault(keyCCCD, defaults.Peripheral.CCCDUUID)
	cfg.SetDefault(keyFramingMode, defaults.Framing.Mode)
	cfg.SetDefault(keyTerminator, defaults.Framing.Terminator)
	cfg.SetDefault(keyFragmentSize, defaults.Framing.FragmentSize)
	cfg.SetDefault(keyMaxMessageBytes, defaults.Framing.MaxMessageBytes)
	cfg.SetDefault(keyAckTemplate, defaults.Responses.Ack)
	cfg.SetDefault(keyCompleteTemplate, defaults.Responses.Complete)
	cfg.SetDefault(keyLogLevel, defaults.Log.Level)
	cfg.SetDefault(keyLogFormat, defaults.Log.Format)
	cfg.SetDefault(keyDebugAddr, defaults.Debug.Addr)
	cfg.SetDefault(keyUARTPath, defaults.UART.Path)
	cfg.SetDefault(keyUARTBaudRate, defaults.UART.BaudRate)
	cfg.SetDefault(keyUARTDataBits, defaults.UART.DataBits)
	cfg.SetDefault(keyUARTStopBits, defaults.UART.StopBits)
	cfg.SetDefault(keyUARTParity, defaults.UART.Parity)
}

func defaultSchema() fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Peripheral: peripheralSchema{
			Name:               DefaultPeripheralName,
			ServiceUUID:        application.DefaultServiceUUID.String(),
			CharacteristicUUID: application.DefaultCharacteristicUUID.String(),
			CCCDUUID:           application.DefaultCCCDUUID.String(),
		},
		Framing: framingSchema{
			Mode:            string(framing.ModeTerminator),
			Terminator:      framing.DefaultTerminator,
			FragmentSize:    framing.DefaultFragmentSize,
			MaxMessageBytes: framing.DefaultMaxMessageBytes,
		},
		Responses: responsesSchema{
			Ack:      application.DefaultAckTemplate,
			Complete: application.DefaultResponseTemplate,
		},
		Log: logSchema{Level: "info", Format: "console"},
		UART: uartSchema{
			BaudRate: 115200,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
		},
	}
}

func defaultViper() *viper.Viper {
	cfg := viper.New()
	applyDefaults(cfg)
	return cfg
}

func decode(cfg *viper.Viper) (Profile, error) {
	if err := (fileSchema{Version: cfg.GetInt("version")}).validateVersion(); err != nil {
		return Profile{}, err
	}

	mode, err := framing.ParseMode(cfg.GetString(keyFramingMode))
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	profile := Profile{
		Source: cfg.ConfigFileUsed(),
		Peripheral: PeripheralSettings{
			Name: strings.TrimSpace(cfg.GetString(keyPeripheralName)),
		},
		Framing: FramingSettings{
			Mode:            mode,
			Terminator:      cfg.GetString(keyTerminator),
			FragmentSize:    cfg.GetInt(keyFragmentSize),
			MaxMessageBytes: cfg.GetInt(keyMaxMessageBytes),
		},
		Responses: ResponseSettings{
			Ack:      cfg.GetString(keyAckTemplate),
			Complete: cfg.GetString(keyCompleteTemplate),
		},
		Log: LogSettings{
			Level:  cfg.GetString(keyLogLevel),
			Format: cfg.GetString(keyLogFormat),
		},
		DebugAddr: cfg.GetString(keyDebugAddr),
		UART: UARTSettings{
			Path:     cfg.GetString(keyUARTPath),
			BaudRate: cfg.GetInt(keyUARTBaudRate),
			DataBits: cfg.GetInt(keyUARTDataBits),
			StopBits: cfg.GetInt(keyUARTStopBits),
			Parity:   cfg.GetString(keyUARTParity),
		},
	}

	uuids := []struct {
		key  string
		dest *uuid.UUID
	}{
		{key: keyServiceUUID, dest: &profile.Peripheral.Service},
		{key: keyCharacteristic, dest: &profile.Peripheral.Characteristic},
		{key: keyCCCD, dest: &profile.Peripheral.CCCD},
	}
	for _, u := range uuids {
		parsed, err := uuid.Parse(cfg.GetString(u.key))
		if err != nil {
			return Profile{}, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, u.key, err)
		}
		*u.dest = parsed
	}

	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

func (p Profile) Validate() error {
	if p.Peripheral.Name == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidProfile, keyPeripheralName)
	}
	if p.Framing.FragmentSize < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidProfile, keyFragmentSize)
	}
	if p.Framing.MaxMessageBytes < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidProfile, keyMaxMessageBytes)
	}
	if p.Framing.Mode == framing.ModeTerminator && p.Framing.Terminator == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidProfile, keyTerminator)
	}
	if p.Peripheral.Characteristic == p.Peripheral.CCCD {
		return fmt.Errorf("%w: characteristic and CCCD share a UUID", ErrInvalidProfile)
	}

	return nil
}

// Codec builds the frame codec the profile selects.
func (p Profile) Codec() (framing.Codec, error) {
	return framing.New(p.Framing.Mode, p.Framing.Terminator, framing.Limits{MaxMessageBytes: p.Framing.MaxMessageBytes})
}

func (p Profile) PeripheralConfig() application.PeripheralConfig {
	return application.PeripheralConfig{
		Characteristic:   p.Peripheral.Characteristic,
		CCCD:             p.Peripheral.CCCD,
		AckTemplate:      p.Responses.Ack,
		ResponseTemplate: p.Responses.Complete,
	}
}

func (p Profile) schema() fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Peripheral: peripheralSchema{
			Name:               p.Peripheral.Name,
			ServiceUUID:        p.Peripheral.Service.String(),
			CharacteristicUUID: p.Peripheral.Characteristic.String(),
			CCCDUUID:           p.Peripheral.CCCD.String(),
		},
		Framing: framingSchema{
			Mode:            string(p.Framing.Mode),
			Terminator:      p.Framing.Terminator,
			FragmentSize:    p.Framing.FragmentSize,
			MaxMessageBytes: p.Framing.MaxMessageBytes,
		},
		Responses: responsesSchema{Ack: p.Responses.Ack, Complete: p.Responses.Complete},
		Log:       logSchema{Level: p.Log.Level, Format: p.Log.Format},
		Debug:     debugSchema{Addr: p.DebugAddr},
		UART: uartSchema{
			Path:     p.UART.Path,
			BaudRate: p.UART.BaudRate,
			DataBits: p.UART.DataBits,
			StopBits: p.UART.StopBits,
			Parity:   p.UART.Parity,
		},
	}
}
