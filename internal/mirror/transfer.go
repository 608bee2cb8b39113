package mirror

import (
	"context"

	"logmirror/internal/remote"
)

type drainResult struct {
	// Marker is the cursor to resume from: the last marker whose portion was
	// fully appended, or the starting marker if nothing was.
	Marker   remote.Marker
	Bytes    int64
	Portions int
	Err      error
}

// drain reads fileName from marker until the source reports no more pending
// data, appending each portion to out. It stops at the first read or write
// error; the returned marker never advances past data that is not on disk.
func drain(ctx context.Context, src remote.Source, instance, fileName string, marker remote.Marker, pageLines int, out appender) drainResult {
	res := drainResult{Marker: marker}
	for {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		portion, err := src.ReadPortion(ctx, instance, fileName, res.Marker, pageLines)
		if err != nil {
			res.Err = err
			return res
		}
		if err := out.Append(portion.Data); err != nil {
			res.Err = err
			return res
		}
		res.Bytes += int64(len(portion.Data))
		res.Portions++
		stalled := portion.NextMarker == res.Marker && len(portion.Data) == 0
		res.Marker = portion.NextMarker
		if !portion.MorePending || stalled {
			return res
		}
	}
}
