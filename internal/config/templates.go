package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "codec":
		return codecTemplate, nil
	case "pktctl", "cli":
		return pktctlTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func TemplateKinds() []string {
	return []string{"codec", "pktctl"}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const codecTemplate = `# warn | ignore | reject
trailing_policy = "warn"
# reject | ignore
extra_fields = "reject"
verify_length = true
max_body_bytes = 8388608
`

const pktctlTemplate = `# table | json | yaml
output = "table"
codec_config = ""
default_id = 0
hex = false
`
