package device

import (
	"regexp"
	"strings"

	z "github.com/Oudwins/zog"
)

const (
	// MinBatteryToTurnOn is the lowest charge that survives the power-on sequence.
	MinBatteryToTurnOn = 11
	// TurnOnBatteryCost is consumed by every successful power-on.
	TurnOnBatteryCost = 10
	// LowBatteryThreshold latches the low-battery notification when crossed.
	LowBatteryThreshold = 20

	MinBattery = 0
	MaxBattery = 100

	// AuthorizedNetworkMarker must appear in every embedded device's network name.
	AuthorizedNetworkMarker = "MD Ltd."
)

// Values written by the line codec may not carry its separators.
const forbiddenChars = ",\r\n"

var octet = `(25[0-5]|2[0-4][0-9]|1?[0-9][0-9]?)`

var ipv4Pattern = regexp.MustCompile(`^` + octet + `\.` + octet + `\.` + octet + `\.` + octet + `$`)

var (
	requiredTextSchema = z.String().Min(1).Required()
	batterySchema      = z.Int().GTE(MinBattery).LTE(MaxBattery)
	ipAddressSchema    = z.String().Required().Match(ipv4Pattern)
	networkSchema      = z.String().Required().Contains(AuthorizedNetworkMarker)
)

// requireText trims value and rejects it when blank or when it would break
// the line format.
func requireText(field string, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if issues := requiredTextSchema.Validate(&trimmed); issues != nil {
		return "", invalidField(field, value, "must not be blank")
	}
	if strings.ContainsAny(trimmed, forbiddenChars) {
		return "", invalidField(field, value, "must not contain commas or line breaks")
	}
	return trimmed, nil
}

// optionalText is requireText for fields where blank means "not set".
func optionalText(field string, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	return requireText(field, trimmed)
}

func validateID(id string) (string, error) {
	return requireText("id", id)
}

func validateName(name string) (string, error) {
	return requireText("name", name)
}

func validateBattery(level int) error {
	if issues := batterySchema.Validate(&level); issues != nil {
		return invalidField("battery percentage", level, "must be between 0 and 100")
	}
	return nil
}

func validateIpAddress(ip string) (string, error) {
	trimmed := strings.TrimSpace(ip)
	if issues := ipAddressSchema.Validate(&trimmed); issues != nil {
		return "", invalidField("ip address", ip, "must be a dotted-quad IPv4 address with octets up to 255")
	}
	return trimmed, nil
}

func validateNetworkName(network string) (string, error) {
	trimmed, err := requireText("network name", network)
	if err != nil {
		return "", err
	}
	if issues := networkSchema.Validate(&trimmed); issues != nil {
		return "", &FieldError{
			Field:  "network name",
			Value:  network,
			Reason: "must contain '" + AuthorizedNetworkMarker + "'",
			Cause:  ErrUnauthorizedNetwork,
		}
	}
	return trimmed, nil
}
