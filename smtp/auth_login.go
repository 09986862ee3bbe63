// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package smtp

// loginAuth is the type that satisfies the Auth interface for the "SMTP LOGIN" auth
type loginAuth struct {
	username, password string
	host               string

	// step counts the server challenges answered so far
	step int
}

// LoginAuth returns an Auth that implements the LOGIN authentication mechanism.
// The login is handled within 3 steps:
// - Sending AUTH LOGIN (server responds with a 334 challenge)
// - Sending the username (server responds with a 334 challenge)
// - Sending the password (server authenticates)
//
// The challenge text itself is not interpreted: servers differ in what they send
// ("Username:", "User Name\x00", or nothing at all), the order is fixed.
//
// LoginAuth will only send the credentials if the connection is using TLS
// or is connected to localhost. Otherwise authentication will fail with an
// error, without sending the credentials.
func LoginAuth(username, password, host string) Auth {
	return &loginAuth{username: username, password: password, host: host}
}

// Start refuses unencrypted remote servers and servers other than the one the Auth
// was created for. The credentials are sent byte for byte as configured.
func (a *loginAuth) Start(server *ServerInfo) (string, []byte, error) {
	// Must have TLS, or else localhost server. Without TLS nothing in ServerInfo
	// can be trusted, including an advertised LOGIN mechanism.
	if !server.TLS && !isLocalhost(server.Name) {
		return "", nil, ErrUnencrypted
	}
	if server.Name != a.host {
		return "", nil, ErrWrongHostname
	}
	a.step = 0
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(_ []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	a.step++
	switch a.step {
	case 1:
		return []byte(a.username), nil
	case 2:
		return []byte(a.password), nil
	}
	return nil, ErrUnexpectedServerChallenge
}
