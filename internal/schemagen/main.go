// Command schemagen regenerates the embedded configuration JSON schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/aidrax/promptctl/pkg/config"
	"github.com/aidrax/promptctl/pkg/yaml"
)

func main() {
	outFile := pflag.StringP("out-file", "o", "schema.json", "output file for the generated schema")
	pflag.Parse()

	gen, err := yaml.NewSchemaGenerator(config.NewConfig(),
		"https://promptctl.aidrax.dev/config.v1beta1.json",
		"github.com/aidrax/promptctl",
	)
	if err != nil {
		fatal(fmt.Errorf("create schema generator: %w", err))
	}

	jsData, err := gen.Generate()
	if err != nil {
		fatal(fmt.Errorf("generate JSON schema: %w", err))
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		fatal(fmt.Errorf("write schema file: %w", err))
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "schemagen:", err)
	os.Exit(1)
}
