package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

// readingsSchema mirrors the JSONL record shape with native types:
// timestamps are microsecond UTC, values stay float64.
var readingsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "resourceId", Type: arrow.BinaryTypes.String},
	{Name: "timestampUTC", Type: arrow.FixedWidthTypes.Timestamp_us},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
	{Name: "unit", Type: arrow.BinaryTypes.String},
}, nil)

type parquetEncoder struct{}

func (parquetEncoder) Encode(w io.Writer, readings []domain.Reading) error {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, readingsSchema)
	defer builder.Release()

	resourceIDs := builder.Field(0).(*array.StringBuilder)
	timestamps := builder.Field(1).(*array.TimestampBuilder)
	values := builder.Field(2).(*array.Float64Builder)
	units := builder.Field(3).(*array.StringBuilder)

	for _, r := range readings {
		resourceIDs.Append(r.ResourceID)
		timestamps.Append(arrow.Timestamp(r.Timestamp.UTC().UnixMicro()))
		values.Append(r.Value)
		units.Append(r.Unit)
	}

	record := builder.NewRecord()
	defer record.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	writer, err := pqarrow.NewFileWriter(readingsSchema, w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}

	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing parquet record: %w", err)
	}

	return writer.Close()
}
