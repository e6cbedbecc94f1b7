package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/aidrax/promptctl/pkg/classify"
	"github.com/aidrax/promptctl/pkg/component"
	"github.com/aidrax/promptctl/pkg/yaml"
)

//go:generate go run ../../internal/schemagen/main.go -o config.v1beta1.json

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed config.v1beta1.json
	schemaJSON []byte

	ValidAPIVersions = []string{
		"promptctl.aidrax.dev/v1beta1",
	}
	ValidKinds = []string{
		"Configuration",
	}

	DefaultValidator = yaml.MustNewValidator("/config.v1beta1.json", schemaJSON)

	defaultPolicy = classify.MustNewPolicy(
		`pathExt(path.lowerAscii()) in [".ts", ".js", ".py", ".sh"] ||
  path.lowerAscii().startsWith("roo-code/src/") ||
  path.lowerAscii().startsWith("roo-code/webview-ui/src/components/")`,
		`path.contains("/__tests__/") || path.endsWith(".spec.ts") || path.endsWith(".snap")`,
		`path.lowerAscii().contains("/prompts/") ||
  path.lowerAscii().contains("/templates/") ||
  pathBase(path).lowerAscii().contains("prompt") ||
  path.lowerAscii().endsWith("system_prompt.txt")`,
	)

	defaultComponents = []*component.Component{
		component.MustNew("roo_code",
			`dirs.exists(d, pathBase(d) == "Roo-Code")`,
			`path.lowerAscii().startsWith("roo-code/") || path.lowerAscii().contains("/roo-code/")`,
		),
		component.MustNew("skill_code_agent",
			`dirs.exists(d, d.endsWith("skills/code-agent"))`,
			`path.contains("skills/code-agent/")`,
		),
		component.MustNew("skill_ip_config_manager",
			`dirs.exists(d, d.endsWith("skills/ip-config-manager"))`,
			`path.contains("skills/ip-config-manager/")`,
		),
		component.MustNew("prompt_agent_workspace",
			`dirs.exists(d, pathBase(d) == "aidrax_prompt_und_agenten")`,
			`path.contains("aidrax_prompt_und_agenten/")`,
		),
		component.MustNew("agent_standards",
			`dirs.exists(d, d.endsWith("aidrax-agent/standards"))`,
			`path.contains("aidrax-agent/standards/")`,
			component.WithRequired(),
		),
		component.MustNew("enterprise_prompts",
			`dirs.exists(d, d.endsWith("aidrax-enterprise/prompts"))`,
			`path.contains("aidrax-enterprise/prompts/")`,
		),
		// Catch-all for files claimed by no specific component.
		component.MustNew("general", `true`, `true`),
	}

	defaultScan = &ScanConfig{MaxDepth: 10}
)

// ScanConfig controls the environment scan.
type ScanConfig struct {
	// MaxDepth is the maximum directory depth to traverse. 0 means no limit.
	MaxDepth uint `json:"maxDepth,omitempty" jsonschema:"title=Maximum Scan Depth"`
}

// Config is the top-level promptctl configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Scan controls the target environment scan.
	Scan *ScanConfig `json:"scan,omitempty" jsonschema:"title=Scan"`
	// Policy holds the category policy expressions.
	Policy *classify.Policy `json:"policy,omitempty" jsonschema:"title=Policy"`
	// Components lists the detectable components, most specific first.
	Components []*component.Component `json:"components,omitempty" jsonschema:"title=Components"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

func NewConfig() *Config {
	c := &Config{
		APIVersion: "promptctl.aidrax.dev/v1beta1",
		Kind:       "Configuration",
	}
	c.EnsureDefaults()

	return c
}

func (c *Config) EnsureDefaults() {
	if c.Scan == nil {
		c.Scan = defaultScan
	}
	if c.Policy == nil {
		c.Policy = defaultPolicy
	}
	if c.Components == nil {
		c.Components = defaultComponents
	}
}

// Validate compiles every CEL expression in the config and reports the
// YAML path of the first failure.
func (c *Config) Validate() error {
	pb := yaml.NewPathBuilder()

	if c.Policy != nil {
		err := c.Policy.Compile()
		if err != nil {
			return yaml.NewError(
				fmt.Errorf("invalid policy: %w", err),
				yaml.WithPath(pb.Root().Child("policy").Build()),
			)
		}
	}

	seen := make(map[string]struct{}, len(c.Components))

	for i, comp := range c.Components {
		uIdx := uint(i) //nolint:gosec // G115: integer overflow conversion int -> uint.

		if _, dup := seen[comp.ID]; dup {
			return yaml.NewError(
				fmt.Errorf("duplicate component %q", comp.ID),
				yaml.WithPath(pb.Root().Child("components").Index(uIdx).Child("id").Build()),
			)
		}

		seen[comp.ID] = struct{}{}

		err := comp.Compile()
		if err != nil {
			return yaml.NewError(
				fmt.Errorf("invalid component %q: %w", comp.ID, err),
				yaml.WithPath(pb.Root().Child("components").Index(uIdx).Build()),
			)
		}
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	apiVersion, ok := jss.Properties.Get("apiVersion")
	if !ok {
		panic("apiVersion property not found in schema")
	}

	for _, version := range ValidAPIVersions {
		apiVersion.OneOf = append(apiVersion.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: version,
			Title: "API Version",
		})
	}

	_, _ = jss.Properties.Set("apiVersion", apiVersion)

	kind, ok := jss.Properties.Get("kind")
	if !ok {
		panic("kind property not found in schema")
	}

	for _, kindValue := range ValidKinds {
		kind.OneOf = append(kind.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: kindValue,
			Title: "Kind",
		})
	}

	_, _ = jss.Properties.Set("kind", kind)
}

func (c *Config) MarshalYAML() ([]byte, error) {
	b := &bytes.Buffer{}
	enc := yaml.NewEncoder(b)

	err := enc.Encode(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b.Bytes(), nil
}

// WriteDefaultConfig writes the embedded default config.yaml and JSON
// schema to the specified path.
func WriteDefaultConfig(path string, force bool) error {
	configExists := false

	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		switch {
		case err == nil && pathInfo.Mode().IsRegular():
			configExists = true
		case pathInfo.IsDir():
			return fmt.Errorf("%s: path is a directory", path)
		default:
			return fmt.Errorf("%s: unknown file state", path)
		}
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if configExists && force {
		// Move the existing file to a backup.
		backupFile := fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano())
		backupPath := filepath.Join(filepath.Dir(path), backupFile)
		slog.Info("backing up existing config file",
			slog.String("path", backupPath),
		)

		err = os.Rename(path, backupPath)
		if err != nil {
			return fmt.Errorf("rename existing config file to backup: %w", err)
		}

		configExists = false
	}

	if !configExists {
		slog.Info("write default configuration",
			slog.String("path", path),
		)

		err = os.WriteFile(path, defaultConfigYAML, 0o600)
		if err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	} else {
		slog.Debug("configuration file already exists, skipping write",
			slog.String("path", path),
		)
	}

	// Write the JSON schema file alongside the config file.
	schemaPath := filepath.Join(filepath.Dir(path), "config.v1beta1.json")

	err = os.WriteFile(schemaPath, schemaJSON, 0o600)
	if err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}

	return nil
}

func GetPath() string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, "promptctl", "config.yaml")
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", "promptctl", "config.yaml")
	}

	tmpConfig := filepath.Join(os.TempDir(), "promptctl", "config.yaml")

	slog.Warn("could not determine user config directory, using temp path for config",
		slog.String("path", tmpConfig),
		slog.Any("error", fmt.Errorf("$XDG_CONFIG_HOME is unset, fall back to home directory: %w", err)),
	)

	return tmpConfig
}
