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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edgeo/drivers/snmp/snmp"
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
	FormatRaw   OutputFormat = "raw"
)

// VarbindOutput represents a varbind for structured output.
type VarbindOutput struct {
	OID   string      `json:"oid"`
	Kind  string      `json:"kind"`
	Value interface{} `json:"value"`
}

// Formatter handles output formatting.
type Formatter struct {
	format    OutputFormat
	writer    io.Writer
	csvWriter *csv.Writer
	first     bool
}

// NewFormatter creates a new formatter.
func NewFormatter(format string) *Formatter {
	f := &Formatter{
		format: OutputFormat(format),
		writer: os.Stdout,
		first:  true,
	}
	if f.format == FormatCSV {
		f.csvWriter = csv.NewWriter(os.Stdout)
	}
	return f
}

// FormatVarbind formats and prints one varbind.
func (f *Formatter) FormatVarbind(vb snmp.Varbind) {
	switch f.format {
	case FormatJSON:
		f.formatJSON(vb)
	case FormatCSV:
		f.formatCSV(vb)
	case FormatRaw:
		f.formatRaw(vb)
	default:
		f.formatTable(vb)
	}
}

// FormatVarbinds formats and prints multiple varbinds.
func (f *Formatter) FormatVarbinds(vbs []snmp.Varbind) {
	for _, vb := range vbs {
		f.FormatVarbind(vb)
	}
}

func (f *Formatter) formatTable(vb snmp.Varbind) {
	var sb strings.Builder
	sb.WriteString(colorize(vb.OID.String(), ColorCyan))
	sb.WriteString(" = ")
	sb.WriteString(colorize(kindName(vb.Value.Kind), ColorYellow))
	sb.WriteString(": ")
	sb.WriteString(formatValue(vb.Value))
	fmt.Fprintln(f.writer, sb.String())
}

func (f *Formatter) formatJSON(vb snmp.Varbind) {
	output := VarbindOutput{
		OID:   vb.OID.String(),
		Kind:  kindName(vb.Value.Kind),
		Value: convertValue(vb.Value),
	}
	data, _ := json.Marshal(output)
	fmt.Fprintln(f.writer, string(data))
}

func (f *Formatter) formatCSV(vb snmp.Varbind) {
	if f.first {
		f.csvWriter.Write([]string{"oid", "kind", "value"})
		f.first = false
	}
	f.csvWriter.Write([]string{vb.OID.String(), kindName(vb.Value.Kind), formatValue(vb.Value)})
	f.csvWriter.Flush()
}

func (f *Formatter) formatRaw(vb snmp.Varbind) {
	fmt.Fprintln(f.writer, formatValue(vb.Value))
}

// kindName renders a ValueKind the way net-snmp's tools spell their
// type names, since that is the vocabulary users of this CLI already
// know from snmpget/snmpwalk output.
func kindName(k snmp.ValueKind) string {
	switch k {
	case snmp.ValueInt:
		return "INTEGER"
	case snmp.ValueOctetString:
		return "STRING"
	case snmp.ValueNull:
		return "NULL"
	case snmp.ValueObjectIdentifier:
		return "OID"
	case snmp.ValueIPAddress:
		return "IpAddress"
	case snmp.ValueCounter32:
		return "Counter32"
	case snmp.ValueGauge32:
		return "Gauge32"
	case snmp.ValueTimeTicks:
		return "Timeticks"
	case snmp.ValueOpaque:
		return "Opaque"
	case snmp.ValueCounter64:
		return "Counter64"
	case snmp.ValueNoSuchObject:
		return "NoSuchObject"
	case snmp.ValueNoSuchInstance:
		return "NoSuchInstance"
	case snmp.ValueEndOfMibView:
		return "EndOfMibView"
	default:
		return "unknown"
	}
}

// formatValue formats a value for human-readable display.
func formatValue(v snmp.Value) string {
	switch v.Kind {
	case snmp.ValueNull:
		return "NULL"

	case snmp.ValueInt:
		return fmt.Sprintf("%d", v.Int)

	case snmp.ValueOctetString:
		if isPrintable(v.Bytes) {
			return fmt.Sprintf("%q", v.Bytes)
		}
		return formatHex(v.Bytes)

	case snmp.ValueObjectIdentifier:
		return v.OID.String()

	case snmp.ValueIPAddress:
		if len(v.Bytes) == 4 {
			return fmt.Sprintf("%d.%d.%d.%d", v.Bytes[0], v.Bytes[1], v.Bytes[2], v.Bytes[3])
		}
		return formatHex(v.Bytes)

	case snmp.ValueCounter32, snmp.ValueGauge32, snmp.ValueCounter64:
		return fmt.Sprintf("%d", v.Counter)

	case snmp.ValueTimeTicks:
		return fmt.Sprintf("%d (%s)", v.Counter, timeTicksToString(v.Counter))

	case snmp.ValueOpaque:
		return formatHex(v.Bytes)

	case snmp.ValueNoSuchObject:
		return "No Such Object available on this agent"

	case snmp.ValueNoSuchInstance:
		return "No Such Instance currently exists at this OID"

	case snmp.ValueEndOfMibView:
		return "End of MIB View"

	default:
		return v.String()
	}
}

// convertValue converts a value for JSON output.
func convertValue(v snmp.Value) interface{} {
	switch v.Kind {
	case snmp.ValueNull:
		return nil

	case snmp.ValueOctetString, snmp.ValueOpaque:
		if isPrintable(v.Bytes) {
			return string(v.Bytes)
		}
		return formatHex(v.Bytes)

	case snmp.ValueObjectIdentifier:
		return v.OID.String()

	case snmp.ValueIPAddress:
		return formatValue(v)

	case snmp.ValueTimeTicks:
		return map[string]interface{}{
			"ticks":   v.Counter,
			"seconds": float64(v.Counter) / 100,
			"human":   timeTicksToString(v.Counter),
		}

	case snmp.ValueCounter32, snmp.ValueGauge32, snmp.ValueCounter64:
		return v.Counter

	case snmp.ValueInt:
		return v.Int

	default:
		return v.String()
	}
}

// timeTicksToString renders hundredths-of-a-second TimeTicks the way
// net-snmp does: "D days, HH:MM:SS.ss".
func timeTicksToString(ticks uint64) string {
	total := ticks / 100
	hundredths := ticks % 100
	days := total / 86400
	total %= 86400
	hours := total / 3600
	total %= 3600
	minutes := total / 60
	seconds := total % 60
	if days > 0 {
		return fmt.Sprintf("%d days, %02d:%02d:%02d.%02d", days, hours, minutes, seconds, hundredths)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, minutes, seconds, hundredths)
}

// isPrintable checks if bytes are printable ASCII.
func isPrintable(data []byte) bool {
	for _, b := range data {
		if b < 32 || b > 126 {
			return false
		}
	}
	return true
}

// formatHex formats bytes as hex string.
func formatHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// Color codes for terminal output.
const (
	ColorReset  = "\033[0m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// colorize wraps text with color codes.
func colorize(text, color string) string {
	if noColor {
		return text
	}
	return color + text + ColorReset
}
