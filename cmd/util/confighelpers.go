// Package util has the config resolution and process setup shared by the
// agent binaries.
package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/0xFacet/facet-op-succinct/cmd/genericconf"
)

// BeginCommonParse parses the command line and layers configuration
// sources into a koanf instance: config files first, then the config
// string, then environment, then flags. An unchanged flag never
// overrides a key an earlier source set.
func BeginCommonParse(f *flag.FlagSet, args []string) (*koanf.Koanf, error) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			f.PrintDefaults()
			os.Exit(0)
		}
	}
	if err := f.Parse(args); err != nil {
		return nil, err
	}
	if f.NArg() != 0 {
		return nil, errors.Errorf("unexpected number of arguments: %d", f.NArg())
	}

	k := koanf.New(".")
	paths, _ := f.GetStringSlice("conf.file")
	for _, path := range paths {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, errors.Wrapf(err, "error loading config file %s", path)
		}
	}
	if confString, _ := f.GetString("conf.string"); confString != "" {
		if err := k.Load(rawbytes.Provider([]byte(confString)), json.Parser()); err != nil {
			return nil, errors.Wrap(err, "error loading config string")
		}
	}
	if envPrefix, _ := f.GetString("conf.env-prefix"); envPrefix != "" {
		if err := loadEnvironmentVariables(k, envPrefix); err != nil {
			return nil, err
		}
	}
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, errors.Wrap(err, "error loading command line arguments")
	}
	return k, nil
}

func loadEnvironmentVariables(k *koanf.Koanf, prefix string) error {
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return k.Load(env.Provider(prefix, ".", func(key string) string {
		// PREFIX_CONF__ENV_PREFIX maps to conf.env-prefix.
		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		key = strings.ReplaceAll(key, "__", ".")
		return strings.ReplaceAll(key, "_", "-")
	}), nil)
}

// EndCommonParse unmarshals the resolved configuration, honoring the
// conf.dump flag by printing the effective config and returning
// genericconf.ErrConfigDumped.
func EndCommonParse(k *koanf.Koanf, config interface{}) error {
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Metadata:         nil,
		Result:           config,
		WeaklyTypedInput: true,
	}
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{
		Tag:           "koanf",
		FlatPaths:     false,
		DecoderConfig: &decoderConfig,
	}); err != nil {
		return errors.Wrap(err, "error unmarshalling config")
	}
	if k.Bool("conf.dump") {
		out, err := k.Marshal(json.Parser())
		if err != nil {
			return errors.Wrap(err, "error marshalling config dump")
		}
		fmt.Println(string(out))
		return genericconf.ErrConfigDumped
	}
	return nil
}
