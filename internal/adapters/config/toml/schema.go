package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version    int              `toml:"version"`
	Peripheral peripheralSchema `toml:"peripheral"`
	Framing    framingSchema    `toml:"framing"`
	Responses  responsesSchema  `toml:"responses"`
	Log        logSchema        `toml:"log"`
	Debug      debugSchema      `toml:"debug"`
	UART       uartSchema       `toml:"uart"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type peripheralSchema struct {
	Name               string `toml:"name"`
	ServiceUUID        string `toml:"service_uuid"`
	CharacteristicUUID string `toml:"characteristic_uuid"`
	CCCDUUID           string `toml:"cccd_uuid"`
}

type framingSchema struct {
	Mode            string `toml:"mode"`
	Terminator      string `toml:"terminator"`
	FragmentSize    int    `toml:"fragment_size"`
	MaxMessageBytes int    `toml:"max_message_bytes"`
}

type responsesSchema struct {
	Ack      string `toml:"ack"`
	Complete string `toml:"complete"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type debugSchema struct {
	Addr string `toml:"addr"`
}

type uartSchema struct {
	Path     string `toml:"path"`
	BaudRate int    `toml:"baud_rate"`
	DataBits int    `toml:"data_bits"`
	StopBits int    `toml:"stop_bits"`
	Parity   string `toml:"parity"`
}
