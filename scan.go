package wire

import (
	"errors"

	"github.com/jackc/pgx/v5/pgtype"
)

var ErrUnknownOid = errors.New("unknown oid")

// Scanner decodes a raw result cell into a Go value.
type Scanner func(value []byte) (any, error)

// NewScanner creates a scanner decoding cells of the given column using the
// given type map. The column format determines whether the text or binary
// codec is used.
func NewScanner(tm *pgtype.Map, column Column) (Scanner, error) {
	typed, has := tm.TypeForOID(uint32(column.Oid))
	if !has {
		return nil, ErrUnknownOid
	}

	return func(value []byte) (any, error) {
		return typed.Codec.DecodeValue(tm, typed.OID, int16(column.Format), value)
	}, nil
}

// Scan decodes the given result cell into a Go value using the session type
// map. Null cells decode to nil and cells of an unregistered OID are passed
// through as their raw bytes.
func (session *Session) Scan(field Field) (any, error) {
	if field.Null {
		return nil, nil
	}

	scan, err := NewScanner(session.types, field.Column)
	if errors.Is(err, ErrUnknownOid) {
		return field.Data, nil
	}

	if err != nil {
		return nil, err
	}

	return scan(field.Data)
}
