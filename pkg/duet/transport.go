// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

import "context"

// Transport moves complete wire messages between the client and the
// module. The caller owns its lifecycle: the client never opens or
// reconnects it.
//
// Send writes one complete wire message. The handler registered with
// SetHandler receives every complete inbound wire message, one call
// per message; transports reading unframed byte streams are expected
// to run a sysex.Decoder to find message boundaries before calling
// it. The handler is invoked from the transport's reader context, so
// it must not block.
type Transport interface {
	Send(ctx context.Context, wire []byte) error
	SetHandler(handler func(wire []byte))
	Close() error
}
