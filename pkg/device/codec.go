package device

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
)

// fields per line, type-and-id included
var lineFieldCount = map[Kind]int{
	KindSmartwatch:       4,
	KindPersonalComputer: 4,
	KindEmbeddedDevice:   5,
}

// Parse decodes one line written by Device.String.
func Parse(line string) (Device, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: incomplete device data %q", ErrMalformedRecord, line)
	}

	typeAndID := strings.SplitN(parts[0], "-", 2)
	if len(typeAndID) < 2 {
		return nil, fmt.Errorf("%w: invalid device type format %q", ErrMalformedRecord, parts[0])
	}

	kind, err := kindFromTag(strings.TrimSpace(typeAndID[0]))
	if err != nil {
		return nil, err
	}

	if want := lineFieldCount[kind]; len(parts) != want {
		return nil, fmt.Errorf("%w: %s line needs %d fields, got %d", ErrMalformedRecord, kind, want, len(parts))
	}

	id := strings.TrimSpace(typeAndID[1])
	name := strings.TrimSpace(parts[1])

	isOn, err := parseBool(parts[2])
	if err != nil {
		return nil, err
	}

	var d Device
	switch kind {
	case KindSmartwatch:
		raw := strings.TrimSuffix(strings.TrimSpace(parts[3]), "%")
		battery, convErr := strconv.Atoi(strings.TrimSpace(raw))
		if convErr != nil {
			return nil, fmt.Errorf("%w: battery %q is not a number", ErrMalformedRecord, parts[3])
		}
		d, err = NewSmartwatch(id, name, isOn, battery)
	case KindPersonalComputer:
		d, err = NewPersonalComputer(id, name, isOn, parts[3])
	case KindEmbeddedDevice:
		d, err = NewEmbeddedDevice(id, name, isOn, parts[3], parts[4])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return d, nil
}

func parseBool(s string) (bool, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), "true"):
		return true, nil
	case strings.EqualFold(strings.TrimSpace(s), "false"):
		return false, nil
	}
	return false, fmt.Errorf("%w: power state %q is not True or False", ErrMalformedRecord, s)
}

// ParseAll reads one device per line. Blank lines are ignored; malformed
// lines are logged and skipped so one bad record does not hide the rest.
// Only read errors are returned.
func ParseAll(r io.Reader) ([]Device, error) {
	logger := common.GetCategoryLogger(common.LoggerNameDevice, common.LoggerCategoryParse)

	var devices []Device
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		d, err := Parse(line)
		if err != nil {
			logger.Warn("Skipping malformed device line",
				zap.Int("line", lineNo),
				zap.String("content", line),
				zap.Error(err))
			continue
		}
		devices = append(devices, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

// WriteAll writes devices in order, one canonical line each.
func WriteAll(w io.Writer, devices []Device) error {
	bw := bufio.NewWriter(w)
	for _, d := range devices {
		if _, err := bw.WriteString(d.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
