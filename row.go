package wire

import (
	"github.com/lib/pq/oid"

	"github.com/pgkit/frontend/pkg/buffer"
)

// Columns represent a collection of columns as reported inside a
// RowDescription message. The active columns shape every subsequent DataRow
// until a new RowDescription arrives.
type Columns []Column

// Column represents the metadata of a single column inside a RowDescription
// message.
type Column struct {
	Table        int32  // table id
	Name         string // column name
	AttrNo       int16  // column attribute no (optional)
	Oid          oid.Oid
	Width        int16
	TypeModifier int32
	Format       FormatCode
}

// readColumns interprets the field descriptions of a RowDescription message
// payload positioned after the field count.
func readColumns(reader *buffer.Reader, count int) (Columns, error) {
	columns := make(Columns, 0, count)

	for i := 0; i < count; i++ {
		var column Column
		var err error

		column.Name, err = reader.GetString()
		if err != nil {
			return nil, err
		}

		column.Table, err = reader.GetInt32()
		if err != nil {
			return nil, err
		}

		column.AttrNo, err = reader.GetInt16()
		if err != nil {
			return nil, err
		}

		id, err := reader.GetInt32()
		if err != nil {
			return nil, err
		}

		column.Oid = oid.Oid(id)

		column.Width, err = reader.GetInt16()
		if err != nil {
			return nil, err
		}

		column.TypeModifier, err = reader.GetInt32()
		if err != nil {
			return nil, err
		}

		format, err := reader.GetInt16()
		if err != nil {
			return nil, err
		}

		column.Format = FormatCode(format)
		columns = append(columns, column)
	}

	return columns, nil
}

// Field represents a single cell inside a DataRow message. A null cell
// carries no byte payload, its Data is nil.
type Field struct {
	Null   bool
	Column Column
	Data   []byte
}
