package device

import (
	"fmt"
	"strings"
)

// EmbeddedDevice is the network-attached variant. It may only run on the
// authorized network.
type EmbeddedDevice struct {
	base
	ipAddress   string
	networkName string
}

func NewEmbeddedDevice(id string, name string, isOn bool, ipAddress string, networkName string) (*EmbeddedDevice, error) {
	ed := &EmbeddedDevice{}

	b, err := newBase(id, name, isOn, ed.canTurnOn)
	if err != nil {
		return nil, err
	}
	ed.base = b

	if err := ed.SetIpAddress(ipAddress); err != nil {
		return nil, err
	}
	if err := ed.SetNetworkName(networkName); err != nil {
		return nil, err
	}
	return ed, nil
}

func (ed *EmbeddedDevice) Kind() Kind {
	return KindEmbeddedDevice
}

func (ed *EmbeddedDevice) IpAddress() string {
	return ed.ipAddress
}

func (ed *EmbeddedDevice) SetIpAddress(ip string) error {
	valid, err := validateIpAddress(ip)
	if err != nil {
		return err
	}
	ed.ipAddress = valid
	return nil
}

func (ed *EmbeddedDevice) NetworkName() string {
	return ed.networkName
}

func (ed *EmbeddedDevice) SetNetworkName(network string) error {
	valid, err := validateNetworkName(network)
	if err != nil {
		return err
	}
	ed.networkName = valid
	return nil
}

func (ed *EmbeddedDevice) canTurnOn() error {
	if !strings.Contains(ed.networkName, AuthorizedNetworkMarker) {
		return fmt.Errorf("%w: %q is not %q", ErrUnauthorizedNetwork, ed.networkName, AuthorizedNetworkMarker)
	}
	return nil
}

func (ed *EmbeddedDevice) TurnOn() error {
	return ed.power.turnOn()
}

func (ed *EmbeddedDevice) String() string {
	return ed.prefix(KindEmbeddedDevice) + "," + ed.ipAddress + "," + ed.networkName
}

func (ed *EmbeddedDevice) Clone() Device {
	c := &EmbeddedDevice{ipAddress: ed.ipAddress, networkName: ed.networkName}
	c.base = ed.cloneBase(c.canTurnOn)
	return c
}
