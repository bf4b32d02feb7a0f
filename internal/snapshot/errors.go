package snapshot

import (
	"fmt"

	"github.com/dshills/navpath/internal/npserr"
)

var (
	errHeaderTooSmall             = fmt.Errorf("snapshot header shorter than %d bytes: %w", HeaderSize, npserr.ErrOutOfBounds)
	errBadMagic                   = fmt.Errorf("snapshot magic mismatch: %w", npserr.ErrBadMagic)
	errUnsupportedVersionSentinel = npserr.ErrUnsupportedVersion
)
