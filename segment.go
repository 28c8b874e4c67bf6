package walstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Config selects where segments live. It is passed by pointer to every
// Backend call; nil means the backend's default.
type Config struct {
	Bucket    string
	ClusterID string
}

func (c Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: empty bucket", ErrInvalidArgument)
	}
	return nil
}

// SegmentMeta describes a segment covering frames [StartFrameNo, EndFrameNo).
type SegmentMeta struct {
	Namespace    string
	SegmentID    uuid.UUID
	StartFrameNo uint64
	EndFrameNo   uint64
	CreatedAt    time.Time
}

func (m SegmentMeta) validate() error {
	if m.Namespace == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidArgument)
	}
	if m.EndFrameNo <= m.StartFrameNo {
		return fmt.Errorf("%w: empty frame range [%d, %d)", ErrInvalidArgument, m.StartFrameNo, m.EndFrameNo)
	}
	return nil
}

// DbMeta summarizes the stored state of a namespace.
type DbMeta struct {
	// MaxFrameNo is the end frame of the most recent segment, or zero when
	// nothing is stored.
	MaxFrameNo uint64
}
