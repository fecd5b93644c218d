// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/edgeo/drivers/snmp/snmp"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set OID TYPE VALUE [OID TYPE VALUE...]",
	Short: "Perform SNMP SET request",
	Long: `Perform an SNMP SET request to modify the value of one or more OIDs.

Type specifiers:
  i - INTEGER
  u - Unsigned INTEGER (Gauge32)
  c - Counter32
  s - OCTET STRING (text)
  x - OCTET STRING (hex bytes, e.g., "DE AD BE EF")
  d - OCTET STRING (decimal bytes, e.g., "10.0.1.1")
  n - NULL
  o - OBJECT IDENTIFIER
  t - TimeTicks
  a - IP Address

Examples:
  # Set system contact (string)
  edgeo-snmp set -t 192.168.1.1 1.3.6.1.2.1.1.4.0 s "admin@example.com"

  # Set system name
  edgeo-snmp set -t 192.168.1.1 1.3.6.1.2.1.1.5.0 s "switch01"

  # Set an integer value
  edgeo-snmp set -t 192.168.1.1 1.3.6.1.4.1.9.2.1.55.0 i 5

  # Set multiple values
  edgeo-snmp set -t 192.168.1.1 \
    1.3.6.1.2.1.1.4.0 s "admin@example.com" \
    1.3.6.1.2.1.1.5.0 s "switch01"`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 3 {
			return fmt.Errorf("requires at least 3 arguments: OID TYPE VALUE")
		}
		if len(args)%3 != 0 {
			return fmt.Errorf("arguments must be in groups of 3: OID TYPE VALUE")
		}
		return nil
	},
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	if err := checkTarget(); err != nil {
		return err
	}

	varbinds, err := parseSetVarbinds(args)
	if err != nil {
		return err
	}

	ctx, cancel := withInterruptContext()
	defer cancel()

	session, err := createSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(session)

	printVerbose("Sending SET request for %d variable(s)...", len(varbinds))
	start := time.Now()

	result, err := session.Set(ctx, varbinds...)
	if err != nil {
		return fmt.Errorf("SET failed: %w", err)
	}

	printVerbose("Response received in %s", formatDuration(time.Since(start)))

	formatter := NewFormatter(outputFormat)
	formatter.FormatVarbinds(result)

	return nil
}

func parseSetVarbinds(args []string) ([]snmp.Varbind, error) {
	var varbinds []snmp.Varbind

	for i := 0; i < len(args); i += 3 {
		oid, err := snmp.ParseOID(args[i])
		if err != nil {
			return nil, fmt.Errorf("invalid OID '%s': %w", args[i], err)
		}

		typeSpec := strings.ToLower(args[i+1])
		valueStr := args[i+2]

		v, err := parseSetValue(typeSpec, valueStr)
		if err != nil {
			return nil, fmt.Errorf("invalid value for OID %s: %w", oid, err)
		}

		varbinds = append(varbinds, snmp.Varbind{OID: oid, Value: v})
	}

	return varbinds, nil
}

func parseSetValue(typeSpec, valueStr string) (snmp.Value, error) {
	switch typeSpec {
	case "i": // INTEGER
		val, err := strconv.ParseInt(valueStr, 10, 32)
		if err != nil {
			return snmp.Value{}, fmt.Errorf("invalid integer: %w", err)
		}
		return snmp.IntValue(val), nil

	case "u": // Unsigned INTEGER (Gauge32)
		val, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil {
			return snmp.Value{}, fmt.Errorf("invalid unsigned integer: %w", err)
		}
		return snmp.Gauge32Value(uint32(val)), nil

	case "c": // Counter32
		val, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil {
			return snmp.Value{}, fmt.Errorf("invalid counter: %w", err)
		}
		return snmp.Counter32Value(uint32(val)), nil

	case "s": // OCTET STRING (text)
		return snmp.OctetStringValue([]byte(valueStr)), nil

	case "x": // OCTET STRING (hex)
		b, err := parseHexString(valueStr)
		if err != nil {
			return snmp.Value{}, fmt.Errorf("invalid hex string: %w", err)
		}
		return snmp.OctetStringValue(b), nil

	case "d": // OCTET STRING (decimal/dotted)
		b, err := parseDottedDecimal(valueStr)
		if err != nil {
			return snmp.Value{}, fmt.Errorf("invalid decimal string: %w", err)
		}
		return snmp.OctetStringValue(b), nil

	case "n": // NULL
		return snmp.NullValue(), nil

	case "o": // OBJECT IDENTIFIER
		oidVal, err := snmp.ParseOID(valueStr)
		if err != nil {
			return snmp.Value{}, fmt.Errorf("invalid OID value: %w", err)
		}
		return snmp.ObjectIdentifierValue(oidVal), nil

	case "t": // TimeTicks
		val, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil {
			return snmp.Value{}, fmt.Errorf("invalid timeticks: %w", err)
		}
		return snmp.TimeTicksValue(uint32(val)), nil

	case "a": // IP Address
		ip := net.ParseIP(valueStr)
		if ip == nil {
			return snmp.Value{}, fmt.Errorf("invalid IP address: %s", valueStr)
		}
		v, err := snmp.IPAddressValue(ip)
		if err != nil {
			return snmp.Value{}, err
		}
		return v, nil

	default:
		return snmp.Value{}, fmt.Errorf("unknown type specifier: %s (use i, u, c, s, x, d, n, o, t, or a)", typeSpec)
	}
}

func parseHexString(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")

	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex characters")
	}

	b := make([]byte, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		val, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return nil, err
		}
		b[i/2] = byte(val)
	}

	return b, nil
}

func parseDottedDecimal(s string) ([]byte, error) {
	parts := strings.Split(s, ".")
	b := make([]byte, len(parts))

	for i, part := range parts {
		val, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte value: %s", part)
		}
		b[i] = byte(val)
	}

	return b, nil
}
