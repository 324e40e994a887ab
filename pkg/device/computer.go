package device

import "fmt"

// PersonalComputer is the variant that needs an operating system to run. An
// empty OperatingSystem means none is installed.
type PersonalComputer struct {
	base
	operatingSystem string
}

// NewPersonalComputer refuses to build a computer that is on without an
// operating system.
func NewPersonalComputer(id string, name string, isOn bool, operatingSystem string) (*PersonalComputer, error) {
	pc := &PersonalComputer{}

	b, err := newBase(id, name, isOn, pc.canTurnOn)
	if err != nil {
		return nil, err
	}
	pc.base = b

	if pc.operatingSystem, err = optionalText("operating system", operatingSystem); err != nil {
		return nil, err
	}

	if isOn && pc.operatingSystem == "" {
		return nil, fmt.Errorf("%w: computer %q cannot be created as on", ErrMissingOperatingSystem, pc.id)
	}
	return pc, nil
}

func (pc *PersonalComputer) Kind() Kind {
	return KindPersonalComputer
}

func (pc *PersonalComputer) OperatingSystem() string {
	return pc.operatingSystem
}

// SetOperatingSystem replaces the installed system. Blank values are
// rejected; an operating system cannot be uninstalled through a setter.
func (pc *PersonalComputer) SetOperatingSystem(os string) error {
	trimmed, err := requireText("operating system", os)
	if err != nil {
		return err
	}
	pc.operatingSystem = trimmed
	return nil
}

func (pc *PersonalComputer) canTurnOn() error {
	if pc.operatingSystem == "" {
		return fmt.Errorf("%w: computer %q cannot be launched", ErrMissingOperatingSystem, pc.id)
	}
	return nil
}

func (pc *PersonalComputer) TurnOn() error {
	return pc.power.turnOn()
}

func (pc *PersonalComputer) String() string {
	return pc.prefix(KindPersonalComputer) + "," + pc.operatingSystem
}

func (pc *PersonalComputer) Clone() Device {
	c := &PersonalComputer{operatingSystem: pc.operatingSystem}
	c.base = pc.cloneBase(c.canTurnOn)
	return c
}
