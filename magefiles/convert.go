//go:build mage

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/pdiddy/bliss-wbs/internal/convert"
	"github.com/pdiddy/bliss-wbs/internal/wbs"
	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// Convert decodes every wbs/*.wbs file into json/ with the pattern policy.
func Convert() error {
	mg.Deps(Init)

	enc, err := convert.NewEncoder(types.FormatJSON)
	if err != nil {
		return err
	}
	cfg := types.ConversionConfig{WBSDir: "wbs", OutputDir: "json"}
	result, err := convert.ConvertDir(context.Background(), wbs.NewDecoder(wbs.PatternPolicy), enc, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
