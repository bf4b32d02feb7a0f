// Package npserr defines the sentinel error kinds shared across the
// navpath build and query paths. Callers wrap these with fmt.Errorf's
// %w verb to attach context; errors.Is still matches the sentinel.
package npserr

import "errors"

var (
	// ErrIo covers any underlying filesystem or mmap failure.
	ErrIo = errors.New("npserr: io error")

	// ErrBadMagic means a snapshot file's magic bytes did not match "NPSS".
	ErrBadMagic = errors.New("npserr: bad snapshot magic")

	// ErrUnsupportedVersion means a snapshot's version field is not one this
	// reader understands.
	ErrUnsupportedVersion = errors.New("npserr: unsupported snapshot version")

	// ErrOutOfBounds means a section offset/length in a snapshot header
	// would read past the end of the file.
	ErrOutOfBounds = errors.New("npserr: snapshot section out of bounds")

	// ErrLength means the writer was given arrays whose lengths are
	// inconsistent with each other (e.g. walk_src/walk_dst/walk_w).
	ErrLength = errors.New("npserr: inconsistent array lengths")

	// ErrTileUnknown means a query named a (x,y,plane) coordinate that is
	// not present in the snapshot's node set.
	ErrTileUnknown = errors.New("npserr: tile not in snapshot")

	// ErrRequirementUnresolved means a macro or global edge cites a
	// requirement id absent from the snapshot's tag table.
	ErrRequirementUnresolved = errors.New("npserr: requirement id unresolved")

	// ErrCancelled means a query was cooperatively aborted before producing
	// a result.
	ErrCancelled = errors.New("npserr: query cancelled")

	// ErrNotLoaded means a query arrived before any snapshot had been
	// loaded into the engine.
	ErrNotLoaded = errors.New("npserr: no snapshot loaded")
)
