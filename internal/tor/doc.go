// Package tor builds the HTTP clients leakscan uses to reach breach APIs.
//
// Three transports are supported:
//   - direct connections (the default)
//   - an external SOCKS5 proxy such as a running Tor daemon
//   - an embedded Tor daemon started through tornago
//
// Routing lookups through Tor hides the checking machine's address from
// the breach services. Connect picks the transport from Options and verifies
// proxies with a SOCKS5 handshake before any target is sent through them.
package tor
