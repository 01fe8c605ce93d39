package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed config.schema.json
var schemaJSON []byte

// checkSchema validates a config file before viper reads it. Viper drops
// unknown keys silently, so a misspelled "prefixMatch" would otherwise pass.
// A missing file is fine.
func checkSchema(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return &ConfigError{Field: "(file)", Message: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return &ConfigError{Field: first.Field(), Message: strings.Join(msgs, "; ")}
}
