package go_rpsession

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// sessionResponse is the distilled session request response.
type sessionResponse struct {
	errorCode uint32
	nonce     string
	rpVersion string
	success   bool
}

// parseSessionResponse extracts the RP headers. RP-Nonce and
// RP-Application-Reason match case-sensitively, RP-Version
// case-insensitively; the reason code is hex-encoded. A response is
// successful iff the status is 200 and RP-Nonce is present.
func parseSessionResponse(httpResponse *HttpResponse) sessionResponse {
	var response sessionResponse
	for _, header := range httpResponse.Headers {
		switch {
		case header.Key == "RP-Nonce":
			response.nonce = header.Value
		case strings.EqualFold(header.Key, "RP-Version"):
			response.rpVersion = header.Value
		case header.Key == "RP-Application-Reason":
			// value is base-16, with or without a 0x prefix
			value := strings.TrimPrefix(strings.TrimPrefix(header.Value, "0x"), "0X")
			if code, err := strconv.ParseUint(value, 16, 32); err == nil {
				response.errorCode = uint32(code)
			}
		}
	}
	if httpResponse.Code == 200 {
		response.success = response.nonce != ""
	}
	return response
}

// sessionRequestPath selects the endpoint for the current target.
func sessionRequestPath(target Target) string {
	if target == TARGET_PS4_8 || target == TARGET_PS4_9 {
		return SESSION_REQUEST_PATH_PS4_PRE10
	}
	if target.IsPS5() {
		return SESSION_REQUEST_PATH_PS5
	}
	return SESSION_REQUEST_PATH_PS4
}

// requestSession performs the single-shot session request exchange.
// stateMutex must be held; it is released around the connect and the
// header receive so Stop can interrupt both.
//
// If targetOut is nil, a version mismatch fails the entire session;
// otherwise the server's parsed target is reported there and
// ErrVersionMismatch returned so the caller may renegotiate.
func (session *Session) requestSession(targetOut *Target) error {
	var conn net.Conn
	for i := range session.connectInfo.hostAddrs {
		addr := &session.connectInfo.hostAddrs[i]
		session.connectInfo.hostname = addr.IP.String()

		Info("Trying to request session from %s:%d", session.connectInfo.hostname, session.connectInfo.port)

		address := net.JoinHostPort(session.connectInfo.hostname, strconv.Itoa(session.connectInfo.port))
		session.stateMutex.Unlock()
		c, err := session.stopPipe.Connect("tcp", address, 0)
		session.stateMutex.Lock()
		if errors.Is(err, ErrCanceled) {
			Info("Session stopped while connecting for session request")
			session.quitReason = QUIT_REASON_STOPPED
			break
		} else if err != nil {
			Error("Session request connect failed: %v", err)
			if errors.Is(err, ErrConnectionRefused) {
				session.quitReason = QUIT_REASON_SESSION_REQUEST_CONNECTION_REFUSED
			} else {
				session.quitReason = QUIT_REASON_NONE
			}
			continue
		}

		conn = c
		session.connectInfo.hostAddrSelected = addr
		break
	}

	if conn == nil {
		Error("Session request connect failed eventually.")
		if session.quitReason == QUIT_REASON_NONE {
			session.quitReason = QUIT_REASON_SESSION_REQUEST_UNKNOWN
		}
		return ErrNetwork
	}
	defer conn.Close()

	Info("Connected to %s:%d", session.connectInfo.hostname, session.connectInfo.port)

	rpVersionStr := session.target.VersionString()
	if rpVersionStr == "" {
		Error("Failed to get version for target, probably invalid target value")
		session.quitReason = QUIT_REASON_SESSION_REQUEST_UNKNOWN
		return ErrInvalidData
	}

	request := fmt.Sprintf(
		"GET %s HTTP/1.1\r\n"+
			"Host: %s:%d\r\n"+
			"User-Agent: %s\r\n"+
			"Connection: close\r\n"+
			"Content-Length: 0\r\n"+
			"RP-Registkey: %s\r\n"+
			"Rp-Version: %s\r\n"+
			"\r\n",
		sessionRequestPath(session.target),
		session.connectInfo.hostname, session.connectInfo.port,
		SESSION_USER_AGENT,
		registKeyHex(session.connectInfo.registKey),
		rpVersionStr)

	Info("Sending session request")
	Debug("Session request:\n%s", request)

	if _, err := conn.Write([]byte(request)); err != nil {
		Error("Failed to send session request")
		session.quitReason = QUIT_REASON_SESSION_REQUEST_UNKNOWN
		return ErrNetwork
	}

	session.stateMutex.Unlock()
	header, err := recvHTTPHeader(conn, session.stopPipe, SESSION_EXPECT_TIMEOUT)
	session.stateMutex.Lock()
	if err != nil {
		if errors.Is(err, ErrCanceled) {
			session.quitReason = QUIT_REASON_STOPPED
		} else {
			Error("Failed to receive session request response")
			session.quitReason = QUIT_REASON_SESSION_REQUEST_UNKNOWN
		}
		return ErrNetwork
	}

	httpResponse, err := parseHTTPResponse(header)
	if err != nil {
		Error("Failed to parse session request response")
		session.quitReason = QUIT_REASON_SESSION_REQUEST_UNKNOWN
		return ErrNetwork
	}

	response := parseSessionResponse(httpResponse)

	var result error = ErrUnknown
	if response.success {
		nonce, err := base64.StdEncoding.DecodeString(response.nonce)
		if err != nil || len(nonce) != RPCRYPT_KEY_SIZE {
			Error("Nonce invalid")
			session.quitReason = QUIT_REASON_SESSION_REQUEST_UNKNOWN
		} else {
			copy(session.nonce[:], nonce)
			result = nil
		}
	} else if (response.errorCode == RP_APPLICATION_REASON_RP_VERSION ||
		response.errorCode == RP_APPLICATION_REASON_UNKNOWN) &&
		targetOut != nil && response.rpVersion != "" && response.rpVersion != rpVersionStr {
		// An UNKNOWN reason with a differing RP-Version header present is
		// treated as a renegotiation trigger, same as RP_VERSION.
		Info("Reported RP-Version mismatch. ours = %s, server = %s", rpVersionStr, response.rpVersion)
		*targetOut = VersionParse(response.rpVersion, session.connectInfo.ps5)
		if !targetOut.IsUnknown() {
			Info("Detected Server RP-Version %s", targetOut.VersionString())
		} else if response.rpVersion == "5.0" {
			Info("Reported Server RP-Version is 5.0. This is probably nonsense, let's try with 9.0")
			*targetOut = TARGET_PS4_9
		} else {
			Error("Server RP-Version is unknown")
			session.quitReason = QUIT_REASON_SESSION_REQUEST_RP_VERSION_MISMATCH
		}
		result = ErrVersionMismatch
	} else {
		Error("Reported Application Reason: %#x (%s)", response.errorCode, RPApplicationReasonString(response.errorCode))
		switch response.errorCode {
		case RP_APPLICATION_REASON_IN_USE:
			session.quitReason = QUIT_REASON_SESSION_REQUEST_RP_IN_USE
		case RP_APPLICATION_REASON_CRASH:
			session.quitReason = QUIT_REASON_SESSION_REQUEST_RP_CRASH
		case RP_APPLICATION_REASON_RP_VERSION:
			session.quitReason = QUIT_REASON_SESSION_REQUEST_RP_VERSION_MISMATCH
			result = ErrVersionMismatch
		default:
			session.quitReason = QUIT_REASON_SESSION_REQUEST_UNKNOWN
		}
	}

	return result
}
