// Package wire implements the frontend half of the PostgreSQL wire protocol,
// version 3.0, as a transport independent codec and state machine. The
// package performs no I/O: outgoing frames are raised through the
// EventSendRequest event for the embedder to write to its transport, and raw
// received bytes are handed back through [Session.Receive] or, one complete
// frame at a time, [Session.HandleMessage]. Events for decoded frames fire
// synchronously in strict wire order.
//
// A minimal embedding wires a session to a net.Conn:
//
//	session := wire.NewSession(wire.Password("secret"))
//	session.Attach(wire.EventSendRequest, func(event wire.Event) {
//		conn.Write(event.Send)
//	})
//
//	session.Startup("alice", "bookings", "")
//	// feed bytes read from conn into session.Receive(...)
//
// Sessions are single-threaded, an embedder using multiple goroutines must
// externally serialize calls against a session.
package wire
