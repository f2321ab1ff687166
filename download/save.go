package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tonymushah/mangadex-api-sub002/filesystem"
	"github.com/tonymushah/mangadex-api-sub002/log"
)

// SaveResult summarises a chapter save.
type SaveResult struct {
	Dir   string
	Pages int
	Bytes int64
	// Failed lists the filenames to pass back to Save to retry.
	Failed []string
}

// PageName is the file name a page is saved under: its 1-based position and original extension.
func PageName(index int, filename string) string {
	return fmt.Sprintf("%03d%s", index+1, strings.ToLower(filepath.Ext(filename)))
}

// Save writes the chapter pages into dir. Individual page failures are collected
// in the result; progress, when set, is called after every page.
func (d *Downloader) Save(ctx context.Context, chapterID, dir string, progress func(Page, error), only ...string) (SaveResult, error) {
	result := SaveResult{Dir: dir}

	m, err := d.Manifest(ctx, chapterID)
	if err != nil {
		return result, err
	}

	if err := filesystem.API().MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("create %s: %w", dir, err)
	}

	for page, err := range d.Stream(ctx, m, d.opts.Quality, only...) {
		if err == nil {
			path := filepath.Join(dir, PageName(page.Index, page.Filename))
			if err = filesystem.WriteAtomic(path, page.Data, 0644); err != nil {
				err = fmt.Errorf("write %s: %w", path, err)
			}
		}

		if progress != nil {
			progress(page, err)
		}

		if err != nil {
			log.Warnf("page %s of chapter %s: %v", page.Filename, chapterID, err)
			result.Failed = append(result.Failed, page.Filename)
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			continue
		}

		result.Pages++
		result.Bytes += int64(len(page.Data))
	}

	return result, nil
}
