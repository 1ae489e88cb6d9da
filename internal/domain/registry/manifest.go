package registry

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/utils"
)

// Format is a manifest encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ManifestPattern matches manifest files relative to the apps directory
const ManifestPattern = "**/*.{json,yaml,yml,toml}"

// manifestList is the multi-app manifest layout
type manifestList struct {
	Apps []types.Package `json:"apps" yaml:"apps" toml:"apps"`
}

var namePolicy = bluemonday.StrictPolicy()

// FormatFromPath picks the manifest format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported manifest format: %s", path)
	}
}

// ParseManifest decodes a manifest into one or more packages
func ParseManifest(format Format, data []byte) ([]types.Package, error) {
	if err := utils.ManifestValidator().ValidateSize(data); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty manifest")
	}

	var list manifestList
	if err := decode(format, data, &list); err != nil {
		return nil, err
	}

	pkgs := list.Apps
	if len(pkgs) == 0 {
		var single types.Package
		if err := decode(format, data, &single); err != nil {
			return nil, err
		}
		if single.ID == "" {
			return nil, fmt.Errorf("manifest has no app id")
		}
		pkgs = []types.Package{single}
	}

	for i := range pkgs {
		pkgs[i].Name = SanitizeName(pkgs[i].Name)
		pkgs[i].Description = SanitizeName(pkgs[i].Description)
	}
	return pkgs, nil
}

// SanitizeName strips markup from a display string
func SanitizeName(s string) string {
	return strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(s)))
}

func decode(format Format, data []byte, v interface{}) error {
	var err error
	switch format {
	case FormatJSON:
		err = sonic.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported manifest format: %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s manifest: %w", format, err)
	}
	return nil
}
