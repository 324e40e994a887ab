package device

// Device is a catalog record. The set of implementations is closed:
// *Smartwatch, *PersonalComputer and *EmbeddedDevice.
type Device interface {
	ID() string
	Name() string
	// SetName validates and stores a trimmed name.
	SetName(name string) error
	IsOn() bool
	Kind() Kind

	// TurnOn runs the variant's precondition and flips the device on. On
	// failure the device is left untouched.
	TurnOn() error
	TurnOff() error

	// String is the canonical line representation read back by Parse.
	String() string

	// Clone returns an independent deep copy.
	Clone() Device

	forceOff()
}

type base struct {
	id    string
	name  string
	power *power
}

func newBase(id string, name string, isOn bool, precondition func() error) (base, error) {
	var err error
	if id, err = validateID(id); err != nil {
		return base{}, err
	}
	if name, err = validateName(name); err != nil {
		return base{}, err
	}
	return base{id: id, name: name, power: newPower(isOn, precondition)}, nil
}

func (b *base) ID() string {
	return b.id
}

func (b *base) Name() string {
	return b.name
}

func (b *base) SetName(name string) error {
	trimmed, err := validateName(name)
	if err != nil {
		return err
	}
	b.name = trimmed
	return nil
}

func (b *base) IsOn() bool {
	return b.power.isOn()
}

func (b *base) TurnOff() error {
	return b.power.turnOff()
}

func (b *base) forceOff() {
	b.power.forceOff()
}

// cloneBase copies the identity fields and rebuilds the state machine around
// the clone's own precondition.
func (b *base) cloneBase(precondition func() error) base {
	return base{id: b.id, name: b.name, power: newPower(b.IsOn(), precondition)}
}

// prefix renders the fields shared by every line: TAG-ID,Name,IsOn.
func (b *base) prefix(k Kind) string {
	return k.Tag() + "-" + b.id + "," + b.name + "," + formatBool(b.IsOn())
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// ForceOff is how the registry resets a device before replaying TurnOn on
// admission.
func ForceOff(d Device) {
	d.forceOff()
}
