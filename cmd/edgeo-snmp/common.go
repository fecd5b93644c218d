package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/edgeo/drivers/snmp/snmp"
	"github.com/edgeo/drivers/snmp/v3"
)

// createSession opens a Session with the current flag configuration.
// For SNMPv3 this also runs engine discovery, so it can block for up
// to the configured timeout before returning.
func createSession(ctx context.Context) (*snmp.Session, error) {
	opts, err := buildSessionOptions()
	if err != nil {
		return nil, err
	}
	s, err := snmp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return s, nil
}

// buildSessionOptions builds snmp.Options from the current flag
// configuration.
func buildSessionOptions() ([]snmp.Option, error) {
	opts := []snmp.Option{
		snmp.WithTarget(target),
		snmp.WithPort(port),
		snmp.WithTimeout(timeout),
	}

	switch strings.ToLower(version) {
	case "1", "v1":
		opts = append(opts, snmp.WithVersion(snmp.VersionV1), snmp.WithCommunity(community))
	case "2c", "v2c", "2", "":
		opts = append(opts, snmp.WithVersion(snmp.VersionV2c), snmp.WithCommunity(community))
	case "3", "v3":
		security, err := buildV3Security()
		if err != nil {
			return nil, err
		}
		opts = append(opts, snmp.WithV3Security(security))
	default:
		return nil, fmt.Errorf("unknown SNMP version %q (use 1, 2c, or 3)", version)
	}

	logLevel := slog.LevelWarn
	logWriter := io.Writer(os.Stderr)
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logWriter = io.Discard
	}
	opts = append(opts, snmp.WithLogger(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: logLevel}))))

	return opts, nil
}

// buildV3Security builds a v3.Security from the current SNMPv3 flags.
func buildV3Security() (*v3.Security, error) {
	if securityName == "" {
		return nil, fmt.Errorf("security-name is required for SNMPv3 (-u)")
	}

	level, err := parseSecurityLevel(securityLevel)
	if err != nil {
		return nil, err
	}

	var secOpts []v3.Option
	if authProtocol != "" {
		proto, err := parseAuthProtocol(authProtocol)
		if err != nil {
			return nil, err
		}
		secOpts = append(secOpts, v3.WithAuth(proto, authPassphrase))
	}
	if privProtocol != "" {
		proto, err := parsePrivProtocol(privProtocol)
		if err != nil {
			return nil, err
		}
		secOpts = append(secOpts, v3.WithPriv(proto, privPassphrase))
	}
	if contextName != "" {
		secOpts = append(secOpts, v3.WithContextName(contextName))
	}

	return v3.New(securityName, level, secOpts...), nil
}

func parseSecurityLevel(s string) (v3.Level, error) {
	switch strings.ToLower(s) {
	case "", "noauthnopriv":
		return v3.NoAuthNoPriv, nil
	case "authnopriv":
		return v3.AuthNoPriv, nil
	case "authpriv":
		return v3.AuthPriv, nil
	default:
		return 0, fmt.Errorf("unknown security level %q", s)
	}
}

func parseAuthProtocol(s string) (v3.AuthProtocol, error) {
	switch strings.ToUpper(s) {
	case "MD5":
		return v3.MD5, nil
	case "SHA", "SHA-1", "SHA1":
		return v3.SHA, nil
	default:
		return 0, fmt.Errorf("unsupported auth protocol %q (use MD5 or SHA)", s)
	}
}

func parsePrivProtocol(s string) (v3.PrivProtocol, error) {
	switch strings.ToUpper(s) {
	case "DES":
		return v3.DES, nil
	case "AES", "AES-128", "AES128":
		return v3.AES, nil
	default:
		return 0, fmt.Errorf("unsupported privacy protocol %q (use DES or AES)", s)
	}
}

// closeSession closes the session, logging (in verbose mode) any
// error rather than surfacing one from a deferred call site.
func closeSession(s *snmp.Session) {
	if err := s.Close(); err != nil {
		printVerbose("error closing session: %v", err)
	}
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// parseOID parses an OID string.
func parseOID(s string) (snmp.OID, error) {
	return snmp.ParseOID(s)
}

// parseOIDs parses multiple OID strings.
func parseOIDs(args []string) ([]snmp.OID, error) {
	oids := make([]snmp.OID, len(args))
	for i, arg := range args {
		oid, err := snmp.ParseOID(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid OID '%s': %w", arg, err)
		}
		oids[i] = oid
	}
	return oids, nil
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// checkTarget verifies that a target is specified.
func checkTarget() error {
	if target == "" {
		return fmt.Errorf("target is required (use -t or --target)")
	}
	return nil
}
