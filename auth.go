package wire

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/pgkit/frontend/pkg/buffer"
	"github.com/pgkit/frontend/pkg/types"
)

// authType represents the authentication sub-code carried inside an
// AuthenticationRequest message.
type authType int32

const (
	// authOK indicates that the connection has been authenticated and the
	// frontend is allowed to proceed.
	authOK authType = 0
	// authKerberosV5 is no longer issued by supported Postgres versions.
	authKerberosV5 authType = 2
	// authClearTextPassword tells the frontend to identify itself by sending
	// the password in clear text.
	authClearTextPassword authType = 3
	// authMD5Password tells the frontend to send the password hashed with MD5
	// using the 4-byte salt carried inside the request.
	authMD5Password authType = 5
	authSCMCredential authType = 6
	authGSS           authType = 7
	authGSSContinue   authType = 8
	authSSPI          authType = 9
)

func (t authType) String() string {
	switch t {
	case authOK:
		return "AuthenticationOk"
	case authKerberosV5:
		return "KerberosV5"
	case authClearTextPassword:
		return "CleartextPassword"
	case authMD5Password:
		return "MD5Password"
	case authSCMCredential:
		return "SCMCredential"
	case authGSS:
		return "GSS"
	case authGSSContinue:
		return "GSSContinue"
	case authSSPI:
		return "SSPI"
	default:
		return fmt.Sprintf("authType(%d)", int32(t))
	}
}

// passwordMode represents the password exchange negotiated with the server.
type passwordMode uint8

const (
	passwordNone passwordMode = iota
	passwordCleartext
	passwordMD5
)

// handleAuth interprets an AuthenticationRequest message. Trust, cleartext
// and md5 authentication are supported, the remaining variants are recognized
// and rejected.
func (session *Session) handleAuth(reader *buffer.Reader) error {
	code, err := reader.GetInt32()
	if err != nil {
		return err
	}

	method := authType(code)
	switch method {
	case authOK:
		session.authenticated = true
		if session.state == StateAuthPending {
			session.state = StateAuthenticated
		}

		session.emit(Event{Kind: EventAuthenticated})
		session.emit(Event{Kind: EventRequestReady})
		return nil
	case authClearTextPassword:
		session.mode = passwordCleartext
		session.emit(Event{Kind: EventPassword})

		if session.password != "" {
			return session.SendPassword(session.password)
		}

		return nil
	case authMD5Password:
		salt, err := reader.GetBytes(4)
		if err != nil {
			return err
		}

		copy(session.salt[:], salt)
		session.mode = passwordMD5
		session.emit(Event{Kind: EventPassword})

		if session.password != "" {
			return session.SendPassword(session.password)
		}

		return nil
	case authKerberosV5, authSCMCredential, authGSS, authGSSContinue, authSSPI:
		return NewErrUnsupportedAuthMethod(method)
	default:
		return NewErrUnsupportedAuthMethod(method)
	}
}

// SendPassword builds a PasswordMessage answering the latest
// AuthenticationRequest. In md5 mode the send value is derived from the
// password, the startup user name and the salt received from the server, in
// cleartext mode the password is send as-is.
func (session *Session) SendPassword(password string) error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	value := password
	if session.mode == passwordMD5 {
		value = md5Password(session.user, password, session.salt)
	}

	session.writer.Start(types.ClientPassword)
	session.writer.AddString(value)
	session.writer.AddNullTerminate()
	return session.send()
}

// md5Password derives the value send inside a PasswordMessage when the server
// requested md5 authentication:
//
//	"md5" + hex(md5(hex(md5(password + user)) + salt))
func md5Password(user, password string, salt [4]byte) string {
	inner := hexMD5([]byte(password + user))
	return "md5" + hexMD5(append([]byte(inner), salt[:]...))
}

func hexMD5(value []byte) string {
	sum := md5.Sum(value)
	return hex.EncodeToString(sum[:])
}
