package evodrive

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"evodrive/internal/nn"
)

// Controller files carry a sensor-count header line ahead of the two-line
// network text, so a simulation can size its sensor array before loading
// the weights.

// SaveControllerFile writes networkText to path with the sensor-count
// header prepended. The text must parse; the header is derived from the
// parsed input width, never trusted from the caller.
func SaveControllerFile(path, networkText string) error {
	network, err := nn.UnmarshalText(networkText)
	if err != nil {
		return fmt.Errorf("controller text does not parse: %w", err)
	}
	payload := strconv.Itoa(network.InputCount()) + "\n" + strings.TrimRight(networkText, "\n") + "\n"
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("write controller %s: %w", path, err)
	}
	return nil
}

// LoadControllerFile reads a controller file, strips the sensor-count
// header, and returns the declared sensor count with the network text. The
// header must agree with the parsed network's input width.
func LoadControllerFile(path string) (int, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", fmt.Errorf("read controller %s: %w", path, err)
	}

	content := strings.TrimRight(string(data), "\n")
	header, networkText, found := strings.Cut(content, "\n")
	if !found {
		return 0, "", fmt.Errorf("controller %s: missing network payload", path)
	}
	sensors, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		return 0, "", fmt.Errorf("controller %s: bad sensor count %q", path, header)
	}

	network, err := nn.UnmarshalText(networkText)
	if err != nil {
		return 0, "", fmt.Errorf("controller %s: %w", path, err)
	}
	if network.InputCount() != sensors {
		return 0, "", fmt.Errorf("controller %s: header declares %d sensors, network expects %d inputs",
			path, sensors, network.InputCount())
	}
	return sensors, networkText, nil
}
