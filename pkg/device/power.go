package device

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

const (
	powerStateOff = "off"
	powerStateOn  = "on"

	eventTurnOn  = "turn_on"
	eventTurnOff = "turn_off"
)

var powerEvents = fsm.Events{
	{Name: eventTurnOn, Src: []string{powerStateOff}, Dst: powerStateOn},
	{Name: eventTurnOff, Src: []string{powerStateOn}, Dst: powerStateOff},
}

// power is the on/off state machine shared by every variant. The variant's
// precondition runs as the before_turn_on callback and cancels the
// transition with its domain error.
type power struct {
	machine *fsm.FSM
}

func newPower(on bool, precondition func() error) *power {
	initial := powerStateOff
	if on {
		initial = powerStateOn
	}

	return &power{
		machine: fsm.NewFSM(initial, powerEvents, fsm.Callbacks{
			"before_" + eventTurnOn: func(_ context.Context, e *fsm.Event) {
				if precondition == nil {
					return
				}
				if err := precondition(); err != nil {
					e.Cancel(err)
				}
			},
		}),
	}
}

func (p *power) isOn() bool {
	return p.machine.Is(powerStateOn)
}

func (p *power) turnOn() error {
	if p.isOn() {
		return ErrAlreadyOn
	}
	return p.fire(eventTurnOn)
}

func (p *power) turnOff() error {
	if !p.isOn() {
		return ErrAlreadyOff
	}
	return p.fire(eventTurnOff)
}

// forceOff resets the machine without running callbacks.
func (p *power) forceOff() {
	p.machine.SetState(powerStateOff)
}

func (p *power) fire(event string) error {
	err := p.machine.Event(context.Background(), event)
	if err == nil {
		return nil
	}

	var canceled fsm.CanceledError
	if errors.As(err, &canceled) && canceled.Err != nil {
		return canceled.Err
	}

	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		if event == eventTurnOn {
			return ErrAlreadyOn
		}
		return ErrAlreadyOff
	}

	return err
}
