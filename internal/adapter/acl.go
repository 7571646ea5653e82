package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shareaudit/internal/domain"
)

// aclScript emits the access rules of one path as compact JSON.
// %s is a single-quoted PowerShell literal.
const aclScript = `$ErrorActionPreference = 'Stop'
$ProgressPreference = 'SilentlyContinue'
$acl = Get-Acl -LiteralPath %s
$rules = @($acl.Access | ForEach-Object {
  [pscustomobject]@{
    Principal        = $_.IdentityReference.Value
    Rights           = $_.FileSystemRights.ToString()
    AccessType       = $_.AccessControlType.ToString()
    InheritanceFlags = $_.InheritanceFlags.ToString()
    PropagationFlags = $_.PropagationFlags.ToString()
    IsInherited      = $_.IsInherited
  }
})
ConvertTo-Json -InputObject $rules -Compress`

// Markers in PowerShell error output
var (
	deniedMarkers   = []string{"unauthorizedaccessexception", "access is denied", "unauthorized operation", "permissiondenied"}
	notFoundMarkers = []string{"itemnotfound", "cannot find path", "does not exist", "network path was not found"}
)

// ACLReader reads share ACLs by running Get-Acl in PowerShell
type ACLReader struct {
	runner  Runner
	timeout time.Duration
}

// NewACLReader creates a reader that runs PowerShell through runner
func NewACLReader(runner Runner, timeout time.Duration) *ACLReader {
	return &ACLReader{runner: runner, timeout: timeout}
}

// GetACL returns the access entries of path. Denials wrap
// domain.ErrAccessDenied and missing paths wrap domain.ErrNotFound.
func (r *ACLReader) GetACL(ctx context.Context, path string) ([]domain.ACE, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	encoded, err := EncodePowerShell(fmt.Sprintf(aclScript, psQuote(path)))
	if err != nil {
		return nil, err
	}

	res, err := r.runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-EncodedCommand", encoded)
	if err != nil {
		return nil, fmt.Errorf("get-acl %s: %w", path, err)
	}
	if !res.OK() {
		return nil, classifyACLError(path, res.Output)
	}
	return parseACL(res.Output)
}

// psQuote returns s as a single-quoted PowerShell string literal
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func classifyACLError(path, output string) error {
	lower := strings.ToLower(output)
	for _, m := range deniedMarkers {
		if strings.Contains(lower, m) {
			return fmt.Errorf("%s: %w", path, domain.ErrAccessDenied)
		}
	}
	for _, m := range notFoundMarkers {
		if strings.Contains(lower, m) {
			return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("get-acl %s: %s", path, firstLine(output))
}

// psACE mirrors the object aclScript emits
type psACE struct {
	Principal        string `json:"Principal"`
	Rights           string `json:"Rights"`
	AccessType       string `json:"AccessType"`
	InheritanceFlags string `json:"InheritanceFlags"`
	PropagationFlags string `json:"PropagationFlags"`
	IsInherited      bool   `json:"IsInherited"`
}

// parseACL decodes the JSON array (or lone object) of access rules,
// skipping any banner text before it
func parseACL(output string) ([]domain.ACE, error) {
	start := strings.IndexAny(output, "[{")
	if start < 0 {
		if strings.TrimSpace(output) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected get-acl output: %s", firstLine(output))
	}
	payload := strings.TrimSpace(output[start:])

	var rules []psACE
	if payload[0] == '{' {
		var one psACE
		if err := json.Unmarshal([]byte(payload), &one); err != nil {
			return nil, fmt.Errorf("decode acl: %w", err)
		}
		rules = []psACE{one}
	} else if err := json.Unmarshal([]byte(payload), &rules); err != nil {
		return nil, fmt.Errorf("decode acl: %w", err)
	}

	aces := make([]domain.ACE, 0, len(rules))
	for _, r := range rules {
		aces = append(aces, domain.ACE{
			Principal:        r.Principal,
			Rights:           r.Rights,
			AccessType:       r.AccessType,
			InheritanceFlags: r.InheritanceFlags,
			PropagationFlags: r.PropagationFlags,
			IsInherited:      r.IsInherited,
		})
	}
	return aces, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
