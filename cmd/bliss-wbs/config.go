// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bliss-wbs/internal/wbs"
	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// bindFlags binds config keys to flags so that flag, env and config file
// values resolve through viper.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func decodeConfig() types.DecodeConfig {
	cfg := types.DecodeConfig{
		Policy:   viper.GetString("decode.policy"),
		Encoding: types.InputEncoding(viper.GetString("decode.encoding")),
		Workers:  viper.GetInt("decode.workers"),
	}
	if viper.IsSet("decode.skip_blank") {
		skip := viper.GetBool("decode.skip_blank")
		cfg.SkipBlank = &skip
	}
	return cfg
}

func conversionConfig() types.ConversionConfig {
	return types.ConversionConfig{
		Format:    types.OutputFormat(viper.GetString("convert.format")),
		WBSDir:    viper.GetString("convert.wbs_dir"),
		OutputDir: viper.GetString("convert.output_dir"),
		Force:     viper.GetBool("convert.force"),
	}
}

func indexConfig() types.IndexConfig {
	dir := viper.GetString("index.dir")
	if dir == "" {
		dir = "index"
	}
	return types.IndexConfig{
		IndexDir:   dir,
		MaxResults: viper.GetInt("index.max_results"),
	}
}

func newDecoder() (*wbs.Decoder, error) {
	return wbs.NewDecoderFromConfig(decodeConfig())
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the settings resolved from flags, BLISS_WBS_* environment
variables and the config file, in the layout the config file uses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.PipelineConfig{
			Decode:     decodeConfig(),
			Conversion: conversionConfig(),
			Index:      indexConfig(),
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
