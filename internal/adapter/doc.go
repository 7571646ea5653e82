// Package adapter implements the collaborators the recon engine talks to.
//
// Each adapter wraps one external system behind a small interface owned by
// the recon package, so the engine can be exercised with fakes.
//
// # Reachability
//
// ICMPPinger shells out to the system ping binary and parses the reported
// round-trip time. TCPPinger measures a TCP handshake and works without
// raw-socket privileges. NmapPinger runs an nmap ping scan and reads the
// smoothed RTT nmap reports.
//
// # Directory
//
// LDAPDirectory issues filtered searches against a global catalog server,
// either bounded by the protocol's default size limit or paged until the
// server reports no more results. Binds are anonymous or GSSAPI using an
// inherited Kerberos credential cache.
//
// DNSReplicaLister and LDAPReplicaLister discover global catalog replicas
// from SRV records or from nTDSDSA objects in the configuration partition.
//
// # Shares and ACLs
//
// NetViewLister runs "net view \\host /all" through a Runner and returns the
// raw listing. SMBLister produces the same listing format natively over
// SMB2 so the tool runs from non-Windows hosts. ACLReader runs Get-Acl via
// PowerShell and decodes the access rules.
//
// # Runners
//
// LocalRunner executes commands on this machine. SSHRunner executes them on
// a Windows jump host over SSH, multiplexing sessions on one connection.
package adapter
