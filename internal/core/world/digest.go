package world

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/pkg/generic"
)

var digests = generic.NewPool(xxhash.New, func(d *xxhash.Digest) { d.Reset() })

// Digest hashes the latest frame. Two runs with the same seed and the
// same commands produce the same digest at the same tick. Entity IDs are
// random and not part of the hash.
func (w *World) Digest() uint64 {
	return FrameDigest(w.Frame())
}

func FrameDigest(f *models.Frame) uint64 {
	if f == nil {
		return 0
	}
	return generic.With(digests, func(h *xxhash.Digest) uint64 {
		return hashFrame(h, f)
	})
}

func hashFrame(h *xxhash.Digest, f *models.Frame) uint64 {
	buf := make([]byte, 0, 64)

	buf = binary.LittleEndian.AppendUint64(buf, f.Tick)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.ScoreLeft))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.ScoreRight))
	_, _ = h.Write(buf)

	for _, b := range f.Balls {
		buf = appendVector(buf[:0], b.Center)
		buf = appendVector(buf, b.Velocity)
		if b.Held {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		_, _ = h.Write(buf)
	}
	for _, r := range f.Robots {
		buf = appendVector(buf[:0], r.Center)
		buf = appendVector(buf, r.Forward)
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

func appendVector(buf []byte, v physics.Vector2) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.X))
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Y))
}
