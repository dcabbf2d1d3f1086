//go:build mage

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/pdiddy/bliss-wbs/internal/convert"
	"github.com/pdiddy/bliss-wbs/internal/index"
	"github.com/pdiddy/bliss-wbs/internal/wbs"
	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// Index decodes every wbs/*.wbs file into the glyph index under index/.
func Index() error {
	mg.Deps(Init)

	paths, err := convert.ListWBS("wbs")
	if err != nil {
		return err
	}
	store, err := index.NewStore(types.IndexConfig{IndexDir: "index"})
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), wbs.NewDecoder(wbs.PatternPolicy), paths, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}
