package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// KeyRequiredError halts a protected download that has neither a
// device credential nor a caller-supplied key. it carries what is
// needed to obtain the key by other means.
type KeyRequiredError struct {
	KeyID            string
	ProtectionHeader string // base64, empty when the manifest has none
	LicenseURL       string
	ConfigDir        string
	Negotiable       bool // a key-system implementation is linked in
}

func (err *KeyRequiredError) Error() string {
	return fmt.Sprintf("this song requires DRM decryption (key id %s)", err.KeyID)
}

// Guidance renders the manual-resolution instructions shown by the CLI.
func (err *KeyRequiredError) Guidance() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  Key ID:       %s\n", err.KeyID)
	if err.ProtectionHeader != "" {
		fmt.Fprintf(&sb, "  PSSH (b64):   %s\n", err.ProtectionHeader)
	}
	fmt.Fprintf(&sb, "  License URL:  %s\n\n", err.LicenseURL)
	if !err.Negotiable {
		sb.WriteString("This song requires DRM decryption and this build cannot negotiate\n")
		sb.WriteString("licenses. Obtain the content key for the key id above and run again with:\n")
		sb.WriteString("  --key <hex>         (32-char hex content key)\n")
		return sb.String()
	}
	sb.WriteString("This song requires DRM decryption. Provide either:\n")
	sb.WriteString("  --cdm <device.wvd>  (automatic license negotiation)\n")
	sb.WriteString("  --key <hex>         (manual, 32-char hex content key)\n")
	if err.ConfigDir != "" {
		sb.WriteString("\nTo skip --cdm every time, place your .wvd file at:\n")
		fmt.Fprintf(&sb, "  %s\n", filepath.Join(err.ConfigDir, "device.wvd"))
		sb.WriteString("  or set MUSIC_DL_CDM=/path/to/device.wvd\n")
	}
	return sb.String()
}
