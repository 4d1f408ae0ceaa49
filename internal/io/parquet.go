package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// Read reads Parquet data and returns a Collection.
func (r *ParquetReader) Read() (*collection.Collection, error) {
	return r.ReadContext(context.Background())
}

// ReadContext is Read with a context for the Arrow table read.
func (r *ParquetReader) ReadContext(ctx context.Context) (*collection.Collection, error) {
	if err := r.options.validate("ReadParquet"); err != nil {
		return nil, err
	}

	// Parquet needs random access, so the whole input is buffered.
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer func() { _ = pqReader.Close() }()

	batchSize := r.options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{BatchSize: int64(batchSize)}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer table.Release()

	tableReader := array.NewTableReader(table, int64(batchSize))
	defer tableReader.Release()

	recs := make([]record.Record, 0, table.NumRows())
	for tableReader.Next() {
		batch, err := FromArrow(tableReader.Record())
		if err != nil {
			return nil, err
		}
		recs = append(recs, batch...)
		if r.options.limit(len(recs)) {
			recs = recs[:r.options.N]
			break
		}
	}
	return collection.FromRecords(recs), nil
}

func compressionCodec(name string) (compress.Compression, error) {
	switch name {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, errors.NewArgumentError("WriteParquet",
			fmt.Sprintf("compression must be one of snappy, gzip, lz4, zstd, uncompressed, got %q", name))
	}
}

// Write writes the Collection as a single Parquet row group.
func (w *ParquetWriter) Write(c *collection.Collection) error {
	if c.Len() == 0 {
		return errors.NewArgumentError("WriteParquet", "cannot write an empty collection: no keys to build a schema from")
	}
	codec, err := compressionCodec(w.options.Compression)
	if err != nil {
		return err
	}

	rec, err := ToArrow(c, w.mem)
	if err != nil {
		return fmt.Errorf("converting collection to Arrow: %w", err)
	}
	defer rec.Release()

	batchSize := w.options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithBatchSize(int64(batchSize)),
		parquet.WithAllocator(w.mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(w.mem),
		pqarrow.WithStoreSchema(),
	)

	// The file writer closes its sink; the caller owns w.writer.
	sink := struct{ io.Writer }{w.writer}
	writer, err := pqarrow.NewFileWriter(rec.Schema(), sink, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}
