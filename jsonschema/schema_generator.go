//go:build generate

// Generates the config JSON schema, example YAML config, and example
// env file from the Config struct tags.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	iyaml "github.com/invopop/yaml"
	"github.com/mcuadros/go-defaults"

	"github.com/theopenlane/utils/envparse"

	"github.com/theopenlane/phishguard/config"
)

const (
	// tagName keys schema field names off the koanf struct tags
	tagName = "koanf"
	// skipTag marks a field as excluded from generated output
	skipTag = "-"
	// defaultTag carries a field's default value
	defaultTag = "default"
	// sensitiveTag marks fields whose defaults must not be emitted
	sensitiveTag = "sensitive"
	// envPrefix prefixes every generated environment variable
	envPrefix = "PHISHGUARD"

	schemaPath = "./jsonschema/phishguard.config.json"
	yamlPath   = "./config/config.example.yaml"
	envPath    = "./config/.env.example"

	filePerm = 0o600
)

var durationType = reflect.TypeOf(time.Duration(0))

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	cfg := &config.Config{}
	defaults.SetDefaults(cfg)

	// slice defaults are not expressible as struct tags
	if len(cfg.Analysis.Brands) == 0 {
		cfg.Analysis.Brands = []string{"paypal", "amazon", "netflix", "bbva", "santander"}
	}

	if err := writeSchema(cfg); err != nil {
		return err
	}

	if err := writeExampleYAML(cfg); err != nil {
		return err
	}

	return writeExampleEnv(cfg)
}

// writeSchema reflects the config struct into a JSON schema, pulling
// field descriptions from the config package's Go comments
func writeSchema(cfg *config.Config) error {
	reflector := jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               tagName,
	}

	if err := reflector.AddGoComments("github.com/theopenlane/phishguard/", "./config"); err != nil {
		return fmt.Errorf("parsing config comments: %w", err)
	}

	data, err := json.MarshalIndent(reflector.Reflect(cfg), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	return writeOut(schemaPath, data)
}

// writeExampleYAML renders the populated defaults as an example config,
// with durations in human-readable form
func writeExampleYAML(cfg *config.Config) error {
	data, err := iyaml.Marshal(asMap(reflect.ValueOf(cfg).Elem()))
	if err != nil {
		return fmt.Errorf("marshaling example yaml: %w", err)
	}

	return writeOut(yamlPath, data)
}

// asMap walks a struct and keys each exported field by its koanf tag
func asMap(v reflect.Value) map[string]any {
	out := map[string]any{}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)

		key := field.Tag.Get(tagName)
		if !field.IsExported() || key == "" || key == skipTag {
			continue
		}

		out[key] = render(v.Field(i))
	}

	return out
}

// render converts one field value to its YAML representation
func render(v reflect.Value) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.Struct:
		return asMap(v)
	case reflect.Slice, reflect.Array:
		items := make([]any, v.Len())
		for i := range items {
			items[i] = render(v.Index(i))
		}

		return items
	default:
		return v.Interface()
	}
}

// writeExampleEnv emits one line per config field with its default,
// leaving sensitive values blank
func writeExampleEnv(cfg *config.Config) error {
	parser := envparse.Config{FieldTagName: tagName, Skipper: skipTag}

	vars, err := parser.GatherEnvInfo(envPrefix, cfg)
	if err != nil {
		return fmt.Errorf("gathering env vars: %w", err)
	}

	var b strings.Builder

	for _, v := range vars {
		if v.Tags.Get(sensitiveTag) == "true" {
			fmt.Fprintf(&b, "# %s is sensitive, set it outside version control\n%s=\"\"\n", v.Key, v.Key)

			continue
		}

		fmt.Fprintf(&b, "%s=%q\n", v.Key, envDefault(v.Tags.Get(defaultTag), v.Type))
	}

	return writeOut(envPath, []byte(b.String()))
}

// envDefault normalizes duration defaults so the example file shows
// the same form the loader accepts
func envDefault(value string, t reflect.Type) string {
	if t != durationType || value == "" {
		return value
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return value
	}

	return d.String()
}

// writeOut writes a generated file and echoes its path
func writeOut(path string, data []byte) error {
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Println("wrote", path)

	return nil
}
