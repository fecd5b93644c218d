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
	"time"

	"github.com/edgeo/drivers/snmp/snmp"
	"github.com/spf13/cobra"
)

var (
	oidSysDescr    = snmp.MustOID(1, 3, 6, 1, 2, 1, 1, 1, 0)
	oidSysObjectID = snmp.MustOID(1, 3, 6, 1, 2, 1, 1, 2, 0)
	oidSysUpTime   = snmp.MustOID(1, 3, 6, 1, 2, 1, 1, 3, 0)
	oidSysContact  = snmp.MustOID(1, 3, 6, 1, 2, 1, 1, 4, 0)
	oidSysName     = snmp.MustOID(1, 3, 6, 1, 2, 1, 1, 5, 0)
	oidSysLocation = snmp.MustOID(1, 3, 6, 1, 2, 1, 1, 6, 0)
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Get basic system information",
	Long: `Get basic system information from an SNMP agent.

Retrieves common system MIB objects:
  - sysDescr (1.3.6.1.2.1.1.1.0) - System description
  - sysObjectID (1.3.6.1.2.1.1.2.0) - System object identifier
  - sysUpTime (1.3.6.1.2.1.1.3.0) - Time since last reboot
  - sysContact (1.3.6.1.2.1.1.4.0) - Contact person
  - sysName (1.3.6.1.2.1.1.5.0) - System name
  - sysLocation (1.3.6.1.2.1.1.6.0) - Physical location

Examples:
  # Get system info
  edgeo-snmp info -t 192.168.1.1

  # Get info with SNMPv3
  edgeo-snmp info -t 192.168.1.1 -V 3 -u admin -a SHA -A authpass`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := checkTarget(); err != nil {
		return err
	}

	ctx, cancel := withInterruptContext()
	defer cancel()

	session, err := createSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(session)

	oids := []snmp.OID{oidSysDescr, oidSysObjectID, oidSysUpTime, oidSysContact, oidSysName, oidSysLocation}

	printVerbose("Retrieving system information...")
	start := time.Now()

	vbs, err := session.Get(ctx, oids...)
	if err != nil {
		return fmt.Errorf("failed to get system info: %w", err)
	}

	printVerbose("Response received in %s", formatDuration(time.Since(start)))

	if outputFormat == "json" {
		formatter := NewFormatter(outputFormat)
		formatter.FormatVarbinds(vbs)
		return nil
	}

	fmt.Println()
	fmt.Println(colorize("System Information", ColorBold))
	fmt.Println(colorize("==================", ColorBold))

	for _, vb := range vbs {
		name := getOIDName(vb.OID)
		fmt.Printf("  %-15s %s\n", colorize(name+":", ColorCyan), formatValue(vb.Value))
	}

	fmt.Println()
	return nil
}

func getOIDName(oid snmp.OID) string {
	switch {
	case oid.Equal(oidSysDescr):
		return "Description"
	case oid.Equal(oidSysObjectID):
		return "Object ID"
	case oid.Equal(oidSysUpTime):
		return "Uptime"
	case oid.Equal(oidSysContact):
		return "Contact"
	case oid.Equal(oidSysName):
		return "Name"
	case oid.Equal(oidSysLocation):
		return "Location"
	default:
		return oid.String()
	}
}
