package device

import "fmt"

// Record is the flat, read-only projection of a device used by the outer
// layers (JSON, YAML, SQL rows, RPC messages). Variant fields are nil when
// they do not apply.
type Record struct {
	Kind              Kind    `json:"kind" yaml:"kind"`
	ID                string  `json:"id" yaml:"id"`
	Name              string  `json:"name" yaml:"name"`
	IsOn              bool    `json:"is_on" yaml:"is_on"`
	BatteryPercentage *int    `json:"battery_percentage,omitempty" yaml:"battery_percentage,omitempty"`
	OperatingSystem   *string `json:"operating_system,omitempty" yaml:"operating_system,omitempty"`
	IpAddress         *string `json:"ip_address,omitempty" yaml:"ip_address,omitempty"`
	NetworkName       *string `json:"network_name,omitempty" yaml:"network_name,omitempty"`
}

func ToRecord(d Device) Record {
	r := Record{
		Kind: d.Kind(),
		ID:   d.ID(),
		Name: d.Name(),
		IsOn: d.IsOn(),
	}

	switch v := d.(type) {
	case *Smartwatch:
		battery := v.BatteryPercentage()
		r.BatteryPercentage = &battery
	case *PersonalComputer:
		if os := v.OperatingSystem(); os != "" {
			r.OperatingSystem = &os
		}
	case *EmbeddedDevice:
		ip, network := v.IpAddress(), v.NetworkName()
		r.IpAddress = &ip
		r.NetworkName = &network
	}
	return r
}

// FromRecord rebuilds a device through its validating constructor, so a
// record that breaks an invariant never becomes a Device.
func FromRecord(r Record) (Device, error) {
	switch r.Kind {
	case KindSmartwatch:
		if r.BatteryPercentage == nil {
			return nil, fmt.Errorf("%w: smartwatch %q has no battery percentage", ErrMalformedRecord, r.ID)
		}
		return NewSmartwatch(r.ID, r.Name, r.IsOn, *r.BatteryPercentage)
	case KindPersonalComputer:
		return NewPersonalComputer(r.ID, r.Name, r.IsOn, deref(r.OperatingSystem))
	case KindEmbeddedDevice:
		return NewEmbeddedDevice(r.ID, r.Name, r.IsOn, deref(r.IpAddress), deref(r.NetworkName))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
