package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeScenario = `name = "two tills"

[[events]]
kind = "connect"
id = "AA:BB"
name = "Till 1"

[[events]]
kind = "connect"
id = "CC:DD"
name = "Till 2"

[[events]]
kind = "mtu"
id = "CC:DD"
mtu = 185

[[events]]
kind = "write"
id = "AA:BB"
data = "ORDER#1,ITEM=Espr"

[[events]]
kind = "write"
id = "CC:DD"
data = "ORDER#2,ITEM=MochaEND"

[[events]]
kind = "write"
id = "AA:BB"
data = "essoEN"

[[events]]
kind = "write"
id = "AA:BB"
data = "D"

[[events]]
kind = "disconnect"
id = "CC:DD"
`

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	_, stderr, err := runOrderlink(t, binaryPath, home, "config", "init")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.FileExists(t, filepath.Join(home, ".orderlink", "config.toml"))

	scenarioPath := filepath.Join(t.TempDir(), "scenario.toml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(smokeScenario), 0o644))

	stdout, stderr, err := runOrderlink(t, binaryPath, home, "simulate", scenarioPath)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "connections: 2 (connected 1)  orders: 2")
	assert.Contains(t, stdout, "#1 ORDER#2,ITEM=Mocha from CC:DD")
	assert.Contains(t, stdout, "#2 ORDER#1,ITEM=Espresso from AA:BB")
	assert.Contains(t, stdout, "CC:DD Order Process Complete: Details for ORDER#2,ITEM=Mocha")
	assert.Contains(t, stdout, "AA:BB Order Process Complete: Details for ORDER#1,ITEM=Espresso")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "orderlink-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/orderlink")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build orderlink binary: %s", string(output))
	return binaryPath
}

func runOrderlink(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
