package go_rpsession

// ctrlMessageTypeName returns a human-readable name for a ctrl message
// type, for log output.
func ctrlMessageTypeName(msgType uint16) string {
	switch msgType {
	case CTRL_MSG_TYPE_SESSION_ID:
		return "SessionId"
	case CTRL_MSG_TYPE_LOGIN_PIN_REQ:
		return "LoginPinRequest"
	case CTRL_MSG_TYPE_LOGIN_PIN:
		return "LoginPin"
	case CTRL_MSG_TYPE_LOGIN:
		return "Login"
	case CTRL_MSG_TYPE_HEARTBEAT_REQ:
		return "HeartbeatRequest"
	case CTRL_MSG_TYPE_HEARTBEAT_REP:
		return "HeartbeatReply"
	case CTRL_MSG_TYPE_GOTO_BED:
		return "GotoBed"
	case CTRL_MSG_TYPE_KEYBOARD_OPEN:
		return "KeyboardOpen"
	case CTRL_MSG_TYPE_KEYBOARD_TEXT:
		return "KeyboardText"
	case CTRL_MSG_TYPE_KEYBOARD_ACCEPT:
		return "KeyboardAccept"
	case CTRL_MSG_TYPE_KEYBOARD_REJECT:
		return "KeyboardReject"
	default:
		return "Unknown"
	}
}
