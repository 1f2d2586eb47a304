package transcribe

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/coursegen/internal/audio"
	"github.com/mgpai22/coursegen/internal/segment"
)

const defaultChunkConcurrency = 3

type chunkFunc func(ctx context.Context, audioPath string) (*Result, error)

// transcribeChunks runs transcribe over every chunk, at most concurrency at
// a time, and stitches the fragments back together in chunk order with
// timestamps shifted onto the full recording. The first failure cancels the
// rest.
func transcribeChunks(
	ctx context.Context,
	chunks []audio.ChunkInfo,
	concurrency int,
	language string,
	transcribe chunkFunc,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = defaultChunkConcurrency
	}

	parts := make([][]segment.Fragment, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			res, err := transcribe(gctx, chunk.Path)
			if err != nil {
				return fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
			}
			parts[i] = shiftFragments(res.Fragments, chunk.StartTime.Seconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []segment.Fragment
	for _, p := range parts {
		all = append(all, p...)
	}

	return &Result{
		Fragments: all,
		Language:  language,
		Duration:  chunks[len(chunks)-1].EndTime,
	}, nil
}

func shiftFragments(fragments []segment.Fragment, offset float64) []segment.Fragment {
	out := make([]segment.Fragment, len(fragments))
	for i, f := range fragments {
		out[i] = segment.Fragment{
			Start: f.Start + offset,
			End:   f.End + offset,
			Text:  f.Text,
		}
	}
	return out
}
