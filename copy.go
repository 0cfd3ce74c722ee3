package wire

import (
	"github.com/pgkit/frontend/pkg/types"
)

// CopyData forwards the given raw payload to the server inside a CopyData
// message. The payload carries no further framing beyond the outer message
// frame.
func (session *Session) CopyData(data []byte) error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	session.writer.Start(types.ClientCopyData)
	session.writer.AddBytes(data)
	return session.send()
}

// SendCopyData encodes the given row cells using the COPY text format and
// forwards them inside a CopyData message. A nil cell denotes SQL NULL.
func (session *Session) SendCopyData(cells [][]byte) error {
	return session.CopyData(EncodeCopyRow(cells))
}

// CopyDone announces the end of a copy-in stream.
func (session *Session) CopyDone() error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	session.writer.Start(types.ClientCopyDone)
	err := session.send()
	if err != nil {
		return err
	}

	if session.state == StateCopyIn {
		session.state = StateBusy
	}

	return nil
}

// CopyFail aborts the active copy-in stream with the given error message.
func (session *Session) CopyFail(message string) error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	session.writer.Start(types.ClientCopyFail)
	session.writer.AddString(message)
	session.writer.AddNullTerminate()

	err := session.send()
	if err != nil {
		return err
	}

	if session.state == StateCopyIn {
		session.state = StateBusy
	}

	session.emit(Event{Kind: EventCopyFail, Tag: message})
	return nil
}

// EncodeCopyRow encodes a single row for the COPY text format. Cells are
// joined by tabs and the row is terminated by a newline. A nil cell denotes
// SQL NULL and is encoded as the literal `\N`.
func EncodeCopyRow(cells [][]byte) []byte {
	var row []byte

	for index, cell := range cells {
		if index > 0 {
			row = append(row, '\t')
		}

		if cell == nil {
			row = append(row, '\\', 'N')
			continue
		}

		row = appendEscaped(row, cell)
	}

	return append(row, '\n')
}

// appendEscaped appends the given cell to dst escaping the backslash and the
// control characters carrying meaning inside the COPY text format.
func appendEscaped(dst, cell []byte) []byte {
	for _, b := range cell {
		switch b {
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\v':
			dst = append(dst, '\\', 'v')
		default:
			dst = append(dst, b)
		}
	}

	return dst
}
