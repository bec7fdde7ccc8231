// Package sensor reads raw values from OS-provided device files: 1-Wire
// thermometers, IIO humidity/pressure chips and the CPU thermal zone.
package sensor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"weather_station/internal/models"
)

// disconnectedC is what a DS18B20 reports when its data line is open.
const disconnectedC = 85.0

const w1SlaveFile = "w1_slave"

// ThermometerReader reads DS18B20 thermometers through the w1-therm sysfs interface.
type ThermometerReader struct {
	devicesDir string
}

// NewThermometerReader returns a reader rooted at devicesDir (normally /sys/bus/w1/devices).
func NewThermometerReader(devicesDir string) *ThermometerReader {
	return &ThermometerReader{devicesDir: devicesDir}
}

// Read returns the thermometer temperature in Celsius. Failure to open or parse the
// device file is reported as SensorUnavailable.
func (r *ThermometerReader) Read(id string) models.MetricSample {
	b, err := os.ReadFile(filepath.Join(r.devicesDir, id, w1SlaveFile))
	if err != nil {
		return models.MetricSample{Status: models.SensorUnavailable, SourceID: id}
	}
	return ParseW1Slave(id, string(b))
}

// ParseW1Slave parses the two-line w1_slave format:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func ParseW1Slave(id, raw string) models.MetricSample {
	out := models.MetricSample{Status: models.SensorUnavailable, SourceID: id}

	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) < 2 {
		return out
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return out
	}
	idx := strings.Index(lines[1], "t=")
	if idx == -1 {
		return out
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(lines[1][idx+2:]), 64)
	if err != nil {
		return out
	}

	out.Value = milli / 1000.0
	out.Status = models.SensorOK
	if out.Value == disconnectedC {
		out.Status = models.SensorOutOfRange
	}
	return out
}
