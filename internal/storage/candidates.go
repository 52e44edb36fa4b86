package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"toroid/pkg/core"
)

// ErrMalformedCandidates reports a candidate file whose records do not form a
// [runs, H, W] array of 0/1 cells.
var ErrMalformedCandidates = errors.New("malformed attractor candidates")

var candidateSchema = arrow.NewSchema([]arrow.Field{
	{Name: "run", Type: arrow.PrimitiveTypes.Int32},
	{Name: "height", Type: arrow.PrimitiveTypes.Int32},
	{Name: "width", Type: arrow.PrimitiveTypes.Int32},
	{Name: "cells", Type: arrow.BinaryTypes.Binary},
}, nil)

// WriteCandidates stores one indicator lattice per run as an Arrow IPC file.
// Every lattice must share dimensions.
func WriteCandidates(path string, lattices []*core.Lattice) error {
	for i, l := range lattices {
		if l.W != lattices[0].W || l.H != lattices[0].H {
			return fmt.Errorf("%w: run %d is %dx%d, want %dx%d",
				ErrMalformedCandidates, i, l.W, l.H, lattices[0].W, lattices[0].H)
		}
	}

	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, candidateSchema)
	defer b.Release()

	runs := b.Field(0).(*array.Int32Builder)
	heights := b.Field(1).(*array.Int32Builder)
	widths := b.Field(2).(*array.Int32Builder)
	cells := b.Field(3).(*array.BinaryBuilder)
	for i, l := range lattices {
		runs.Append(int32(i))
		heights.Append(int32(l.H))
		widths.Append(int32(l.W))
		cells.Append(l.Cells())
	}
	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating candidate file: %w", err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(candidateSchema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("opening arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing candidates: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return f.Close()
}

// ReadCandidates loads a file written by WriteCandidates in run order.
func ReadCandidates(path string) ([]*core.Lattice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candidate file: %w", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCandidates, err)
	}
	defer r.Close()

	if !sameColumns(r.Schema()) {
		return nil, fmt.Errorf("%w: unexpected schema %s", ErrMalformedCandidates, r.Schema())
	}

	var out []*core.Lattice
	w, h := -1, -1
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedCandidates, i, err)
		}
		heights := rec.Column(1).(*array.Int32)
		widths := rec.Column(2).(*array.Int32)
		cells := rec.Column(3).(*array.Binary)
		for row := 0; row < int(rec.NumRows()); row++ {
			lh, lw := int(heights.Value(row)), int(widths.Value(row))
			if w < 0 {
				w, h = lw, lh
			}
			if lw != w || lh != h || lw <= 0 || lh <= 0 {
				return nil, fmt.Errorf("%w: run %d is %dx%d, want %dx%d", ErrMalformedCandidates, len(out), lw, lh, w, h)
			}
			data := cells.Value(row)
			if len(data) != w*h {
				return nil, fmt.Errorf("%w: run %d has %d cells, want %d", ErrMalformedCandidates, len(out), len(data), w*h)
			}
			buf := make([]uint8, len(data))
			for j, v := range data {
				if v > 1 {
					return nil, fmt.Errorf("%w: run %d cell %d = %d", ErrMalformedCandidates, len(out), j, v)
				}
				buf[j] = v
			}
			out = append(out, core.View(w, h, buf))
		}
	}
	return out, nil
}

func sameColumns(sc *arrow.Schema) bool {
	if sc.NumFields() != candidateSchema.NumFields() {
		return false
	}
	for i, f := range candidateSchema.Fields() {
		got := sc.Field(i)
		if got.Name != f.Name || !arrow.TypeEqual(got.Type, f.Type) {
			return false
		}
	}
	return true
}
