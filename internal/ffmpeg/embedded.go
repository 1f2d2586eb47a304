//go:build ffmpeg_embedded

package ffmpeg

import (
	"embed"
	"errors"
	"io"
	"io/fs"
)

// assets/ holds the per-platform release zips, named as assetForPlatform
// returns them.
//
//go:embed assets/*
var bundle embed.FS

func openEmbeddedAsset(name string) (io.ReadCloser, bool, error) {
	f, err := bundle.Open("assets/" + name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}
