package sensor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IIO channel names, see Documentation/ABI/testing/sysfs-bus-iio.
const (
	chanHumidity = "in_humidityrelative" // milli percent
	chanPressure = "in_pressure"         // kPa
	chanTemp     = "in_temp"             // milli degrees Celsius
)

var errNoChannel = errors.New("iio channel not found")

// Onboard reads the board's combined humidity/pressure sensor through IIO sysfs
// and the SoC temperature through the thermal zone file.
type Onboard struct {
	humidityDev string
	pressureDev string
	cpuPath     string
}

// NewOnboard returns an Onboard reader for the given IIO device directories.
func NewOnboard(humidityDev, pressureDev, cpuThermalPath string) *Onboard {
	return &Onboard{
		humidityDev: humidityDev,
		pressureDev: pressureDev,
		cpuPath:     cpuThermalPath,
	}
}

// Humidity returns relative humidity in percent.
func (o *Onboard) Humidity() (float64, error) {
	v, err := readChannel(o.humidityDev, chanHumidity)
	if err != nil {
		return 0, fmt.Errorf("read humidity: %w", err)
	}
	return v / 1000.0, nil
}

// Pressure returns barometric pressure in millibar.
func (o *Onboard) Pressure() (float64, error) {
	v, err := readChannel(o.pressureDev, chanPressure)
	if err != nil {
		return 0, fmt.Errorf("read pressure: %w", err)
	}
	return v * 10.0, nil
}

// TemperatureFromHumidity returns the humidity chip's temperature in Celsius.
func (o *Onboard) TemperatureFromHumidity() (float64, error) {
	v, err := readChannel(o.humidityDev, chanTemp)
	if err != nil {
		return 0, fmt.Errorf("read humidity chip temperature: %w", err)
	}
	return v / 1000.0, nil
}

// TemperatureFromPressure returns the pressure chip's temperature in Celsius.
func (o *Onboard) TemperatureFromPressure() (float64, error) {
	v, err := readChannel(o.pressureDev, chanTemp)
	if err != nil {
		return 0, fmt.Errorf("read pressure chip temperature: %w", err)
	}
	return v / 1000.0, nil
}

// CPUTemperature returns the SoC temperature in Celsius.
func (o *Onboard) CPUTemperature() (float64, error) {
	v, err := readFloat(o.cpuPath)
	if err != nil {
		return 0, fmt.Errorf("read cpu temperature: %w", err)
	}
	return v / 1000.0, nil
}

// readChannel prefers the processed <chan>_input file and falls back to
// (<chan>_raw + <chan>_offset) * <chan>_scale.
func readChannel(dev, channel string) (float64, error) {
	if v, err := readFloat(filepath.Join(dev, channel+"_input")); err == nil {
		return v, nil
	}
	raw, err := readFloat(filepath.Join(dev, channel+"_raw"))
	if err != nil {
		return 0, fmt.Errorf("%s in %s: %w", channel, dev, errNoChannel)
	}
	offset, err := readFloat(filepath.Join(dev, channel+"_offset"))
	if err != nil {
		offset = 0
	}
	scale, err := readFloat(filepath.Join(dev, channel+"_scale"))
	if err != nil {
		scale = 1
	}
	return (raw + offset) * scale, nil
}

func readFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}
