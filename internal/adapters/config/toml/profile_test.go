package toml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	profile, err := Load(viper.New())
	require.NoError(t, err)

	assert.Empty(t, profile.Source)
	assert.Equal(t, DefaultPeripheralName, profile.Peripheral.Name)
	assert.Equal(t, application.DefaultServiceUUID, profile.Peripheral.Service)
	assert.Equal(t, application.DefaultCharacteristicUUID, profile.Peripheral.Characteristic)
	assert.Equal(t, application.DefaultCCCDUUID, profile.Peripheral.CCCD)
	assert.Equal(t, framing.ModeTerminator, profile.Framing.Mode)
	assert.Equal(t, "END", profile.Framing.Terminator)
	assert.Equal(t, 20, profile.Framing.FragmentSize)
	assert.Equal(t, 65536, profile.Framing.MaxMessageBytes)
	assert.Equal(t, application.DefaultAckTemplate, profile.Responses.Ack)
	assert.Equal(t, 115200, profile.UART.BaudRate)
	assert.Equal(t, profile, Default())
}

func TestLoadReadsConfigFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".orderlink")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
version = 1

[peripheral]
name = "front-till"

[framing]
mode = "length-prefix"
max_message_bytes = 0

[uart]
path = "/dev/ttyACM0"
`), 0o600))

	profile, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), profile.Source)
	assert.Equal(t, "front-till", profile.Peripheral.Name)
	assert.Equal(t, framing.ModeLengthPrefix, profile.Framing.Mode)
	assert.Zero(t, profile.Framing.MaxMessageBytes)
	assert.Equal(t, "/dev/ttyACM0", profile.UART.Path)

	codec, err := profile.Codec()
	require.NoError(t, err)
	assert.IsType(t, &framing.LengthPrefixCodec{}, codec)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ORDERLINK_FRAMING_FRAGMENT_SIZE", "182")
	t.Setenv("ORDERLINK_DEBUG_ADDR", "127.0.0.1:8089")

	profile, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 182, profile.Framing.FragmentSize)
	assert.Equal(t, "127.0.0.1:8089", profile.DebugAddr)
}

func TestLoadExplicitConfigMustExist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := viper.New()
	cfg.Set("config", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load(cfg)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad uuid", body: "[peripheral]\ncharacteristic_uuid = \"not-a-uuid\"\n"},
		{name: "bad mode", body: "[framing]\nmode = \"cobs\"\n"},
		{name: "zero fragment", body: "[framing]\nfragment_size = 0\n"},
		{name: "shared uuid", body: "[peripheral]\ncccd_uuid = \"00001111-0000-1000-8000-00805f9b34fb\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			cfg := viper.New()
			cfg.Set("config", path)

			_, err := Load(cfg)
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestLoadRejectsFutureSchemaVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 9\n"), 0o600))

	cfg := viper.New()
	cfg.Set("config", path)

	_, err := Load(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config schema version 9")
}

func TestWriteThenLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	profile := Default()
	profile.Peripheral.Name = "kiosk"
	profile.Framing.FragmentSize = 64
	require.NoError(t, Write(path, profile, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = Write(path, profile, false)
	assert.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, Write(path, profile, true))

	cfg := viper.New()
	cfg.Set("config", path)
	loaded, err := Load(cfg)
	require.NoError(t, err)

	profile.Source = path
	assert.Equal(t, profile, loaded)
}

func TestPeripheralConfigCarriesTemplates(t *testing.T) {
	t.Parallel()

	profile := Default()
	profile.Responses.Complete = "Done: %s"

	cfg := profile.PeripheralConfig()
	assert.Equal(t, application.DefaultCharacteristicUUID, cfg.Characteristic)
	assert.Equal(t, "Done: %s", cfg.ResponseTemplate)
}
