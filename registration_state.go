package goIdent

import "fmt"

// The registration protocol is expressed as a pure transition function over
// tagged states and triggers. step decides the next state and the ordered
// side-effect list; registration (registration.go) executes the effects
// against Redis. Keeping step free of I/O makes the sequencing rules
// testable without a backend.

type regState uint8

const (
	stateUnregistered regState = iota
	stateValidating
	stateRegistering
	stateRegistered
	stateUpdating
	stateRemoving
	stateRemoved
)

func (s regState) String() string {
	switch s {
	case stateUnregistered:
		return "Unregistered"
	case stateValidating:
		return "Validating"
	case stateRegistering:
		return "Registering"
	case stateRegistered:
		return "Registered"
	case stateUpdating:
		return "Updating"
	case stateRemoving:
		return "Removing"
	case stateRemoved:
		return "Removed"
	default:
		return fmt.Sprintf("regState(%d)", uint8(s))
	}
}

type regTrigger uint8

const (
	triggerValidate regTrigger = iota
	triggerValidated
	triggerRegister
	triggerRegistered
	triggerRestore
	triggerUpdate
	triggerRemove
	triggerRemoved
	triggerCleanup
)

func (t regTrigger) String() string {
	switch t {
	case triggerValidate:
		return "Validate"
	case triggerValidated:
		return "Validated"
	case triggerRegister:
		return "Register"
	case triggerRegistered:
		return "Registered"
	case triggerRestore:
		return "Restore"
	case triggerUpdate:
		return "Update"
	case triggerRemove:
		return "Remove"
	case triggerRemoved:
		return "Removed"
	case triggerCleanup:
		return "Cleanup"
	default:
		return fmt.Sprintf("regTrigger(%d)", uint8(t))
	}
}

// regEffect is one side effect ordered by a transition. Order within the
// returned slice is the protocol's sequencing contract: reserve before
// persist, release old only after persist, delete record before releasing
// its rows.
type regEffect uint8

const (
	effectRunValidation regEffect = iota
	effectReserveUsername
	effectReserveEmail
	effectCreateRecord
	effectSaveRecord
	effectReleaseOldUsername
	effectReleaseOldEmail
	effectLoadRecord
	effectDeleteRecord
	effectReleaseUsername
	effectReleaseEmail
	effectReleaseHeld
	effectCommit
)

// regGuards carries the predicates the transition function needs. The
// session computes them from its candidate/snapshot pair before firing.
type regGuards struct {
	validationPassed bool
	registered       bool
	hasUsername      bool
	hasEmail         bool
	usernameChanged  bool
	emailChanged     bool
	oldHasUsername   bool
	oldHasEmail      bool
}

// step is the transition table from the protocol design, with guard
// predicates deciding both the target state and the effect list.
func step(from regState, trigger regTrigger, g regGuards) (regState, []regEffect, error) {
	if trigger == triggerCleanup {
		return stateUnregistered, []regEffect{effectReleaseHeld}, nil
	}

	switch from {
	case stateUnregistered, stateRegistered:
		switch trigger {
		case triggerValidate:
			return stateValidating, []regEffect{effectRunValidation}, nil
		case triggerRegister:
			if from != stateUnregistered {
				break
			}
			if !g.validationPassed {
				return from, nil, fmt.Errorf("%w: Register requires passed validation", errInvalidTransition)
			}
			effects := make([]regEffect, 0, 3)
			if g.hasUsername {
				effects = append(effects, effectReserveUsername)
			}
			if g.hasEmail {
				effects = append(effects, effectReserveEmail)
			}
			effects = append(effects, effectCreateRecord)
			return stateRegistering, effects, nil
		case triggerRestore:
			if from != stateUnregistered {
				break
			}
			return stateRegistered, []regEffect{effectLoadRecord}, nil
		case triggerUpdate:
			if from != stateRegistered {
				break
			}
			if !g.validationPassed {
				return from, nil, fmt.Errorf("%w: Update requires passed validation", errInvalidTransition)
			}
			// New identifiers are reserved before the record write; the old
			// rows go away only once the record safely references the new
			// ones.
			effects := make([]regEffect, 0, 5)
			if g.usernameChanged && g.hasUsername {
				effects = append(effects, effectReserveUsername)
			}
			if g.emailChanged && g.hasEmail {
				effects = append(effects, effectReserveEmail)
			}
			effects = append(effects, effectSaveRecord)
			if g.usernameChanged && g.oldHasUsername {
				effects = append(effects, effectReleaseOldUsername)
			}
			if g.emailChanged && g.oldHasEmail {
				effects = append(effects, effectReleaseOldEmail)
			}
			return stateUpdating, effects, nil
		case triggerRemove:
			if from != stateRegistered {
				break
			}
			// Record first: a reader must never resolve an index row to a
			// tombstoned id because the row outlived a half-done remove the
			// other way around.
			effects := make([]regEffect, 0, 3)
			effects = append(effects, effectDeleteRecord)
			if g.oldHasUsername {
				effects = append(effects, effectReleaseUsername)
			}
			if g.oldHasEmail {
				effects = append(effects, effectReleaseEmail)
			}
			return stateRemoving, effects, nil
		}

	case stateValidating:
		if trigger == triggerValidated {
			if g.validationPassed && g.registered {
				return stateRegistered, nil, nil
			}
			return stateUnregistered, nil, nil
		}

	case stateRegistering:
		if trigger == triggerRegistered {
			return stateRegistered, []regEffect{effectCommit}, nil
		}

	case stateUpdating:
		if trigger == triggerRegistered {
			return stateRegistered, []regEffect{effectCommit}, nil
		}

	case stateRemoving:
		if trigger == triggerRemoved {
			return stateRemoved, []regEffect{effectCommit}, nil
		}
	}

	return from, nil, fmt.Errorf("%w: %s from %s", errInvalidTransition, trigger, from)
}
