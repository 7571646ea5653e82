package domain

import (
	"fmt"
	"time"
)

// HostOutcome classifies the result of probing one host
type HostOutcome string

const (
	OutcomeReachableWithShares HostOutcome = "reachable_with_shares"
	OutcomeNoMatchingShares    HostOutcome = "reachable_no_matching_shares"
	OutcomeUnreachable         HostOutcome = "unreachable"
	OutcomeNonDirectoryHost    HostOutcome = "non_directory_host"
)

// Description returns the operator-facing wording for an outcome
func (o HostOutcome) Description() string {
	switch o {
	case OutcomeReachableWithShares:
		return "reachable with disk shares"
	case OutcomeNoMatchingShares:
		return "reachable, no disk shares"
	case OutcomeUnreachable:
		return "offline or firewalled"
	case OutcomeNonDirectoryHost:
		return "share listing refused, likely non-Windows"
	default:
		return string(o)
	}
}

// ShareRef is a share discovered on a host
type ShareRef struct {
	Host string
	Name string
}

// Path formats the share as a UNC path (\\host\share)
func (s ShareRef) Path() string {
	return SharePath(s.Host, s.Name)
}

// SharePath formats host and share name as a UNC path
func SharePath(host, share string) string {
	return fmt.Sprintf(`\\%s\%s`, host, share)
}

// ACE is one access-control entry as returned by the ACL collaborator
type ACE struct {
	Principal        string `json:"principal"`
	Rights           string `json:"rights"`
	AccessType       string `json:"access_type"`
	InheritanceFlags string `json:"inheritance_flags"`
	PropagationFlags string `json:"propagation_flags"`
	IsInherited      bool   `json:"is_inherited"`
}

// PermissionRecord is one ACE attributed to a specific share path
type PermissionRecord struct {
	Path             string `json:"path" yaml:"path"`
	Principal        string `json:"principal" yaml:"principal"`
	Rights           string `json:"rights" yaml:"rights"`
	AccessType       string `json:"access_type" yaml:"access_type"`
	InheritanceFlags string `json:"inheritance_flags" yaml:"inheritance_flags"`
	PropagationFlags string `json:"propagation_flags" yaml:"propagation_flags"`
	IsInherited      bool   `json:"is_inherited" yaml:"is_inherited"`
	Host             string `json:"host" yaml:"host"`
	Share            string `json:"share" yaml:"share"`
}

// NewPermissionRecord attaches the share path to an ACE
func NewPermissionRecord(share ShareRef, ace ACE) PermissionRecord {
	return PermissionRecord{
		Path:             share.Path(),
		Principal:        ace.Principal,
		Rights:           ace.Rights,
		AccessType:       ace.AccessType,
		InheritanceFlags: ace.InheritanceFlags,
		PropagationFlags: ace.PropagationFlags,
		IsInherited:      ace.IsInherited,
		Host:             share.Host,
		Share:            share.Name,
	}
}

// ShareFailure records a share whose ACL could not be read
type ShareFailure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// HostResult is the owned result of one host probe task
type HostResult struct {
	Host     string             `json:"host"`
	Outcome  HostOutcome        `json:"outcome"`
	Shares   []string           `json:"shares,omitempty"`
	Records  []PermissionRecord `json:"records,omitempty"`
	Failures []ShareFailure     `json:"-"`
	Detail   string             `json:"detail,omitempty"`
	Duration time.Duration      `json:"duration"`
}
