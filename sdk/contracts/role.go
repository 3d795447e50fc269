package contracts

// DeviceRole fixes which TurboMIDI commands an engine may originate and
// which it must answer.
type DeviceRole int

const (
	// RoleEither may both originate master commands (Negotiate, Push) and
	// answer slave-side requests. Used by devices that can sit on either
	// end of the link.
	RoleEither DeviceRole = iota
	// RoleMaster may originate Negotiate/Push but never answers SpeedRequest,
	// SpeedNegotiate, SpeedTest or SpeedTest2.
	RoleMaster
	// RoleSlave answers slave-side requests but may never call Negotiate or
	// Push.
	RoleSlave
)

// String renders the role for logging and test failure messages.
func (r DeviceRole) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleSlave:
		return "slave"
	case RoleEither:
		return "either"
	default:
		return "unknown"
	}
}

// MayOriginate reports whether an engine with this role may call Negotiate
// or Push.
func (r DeviceRole) MayOriginate() bool {
	return r != RoleSlave
}

// MayAnswer reports whether an engine with this role reacts to incoming
// SpeedRequest/SpeedNegotiate/SpeedTest/SpeedTest2 frames.
func (r DeviceRole) MayAnswer() bool {
	return r != RoleMaster
}
