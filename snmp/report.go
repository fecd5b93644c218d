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

package snmp

// Report PDUs (RFC 3412 §7.2, RFC 3414 §5) always carry exactly one
// varbind: a counter OID under one of three subtrees, naming why the
// engine refused the request instead of answering it. classifyReport
// maps that OID to a stable name so callers can branch on it without
// hand-matching dotted strings.

var mpdStats = map[uint32]string{
	1: "snmpUnknownSecurityModels",
	2: "snmpInvalidMsgs",
	3: "snmpUnknownPDUHandlers",
}

var usmStats = map[uint32]string{
	1: "usmStatsUnsupportedSecLevels",
	2: "usmStatsNotInTimeWindows",
	3: "usmStatsUnknownUserNames",
	4: "usmStatsUnknownEngineIDs",
	5: "usmStatsWrongDigests",
	6: "usmStatsDecryptionErrors",
}

var targetStats = map[uint32]string{
	4: "snmpUnavailableContexts",
	5: "snmpUnknownContexts",
}

var (
	mpdStatsPrefix    = MustOID(1, 3, 6, 1, 6, 3, 11, 2, 1)
	usmStatsPrefix    = MustOID(1, 3, 6, 1, 6, 3, 15, 1, 1)
	targetStatsPrefix = MustOID(1, 3, 6, 1, 6, 3, 12, 1)
)

var (
	mpdStatsPrefixLen    = mustPrefixLen(mpdStatsPrefix)
	usmStatsPrefixLen    = mustPrefixLen(usmStatsPrefix)
	targetStatsPrefixLen = mustPrefixLen(targetStatsPrefix)
)

func mustPrefixLen(prefix OID) int {
	subids, err := prefix.Ints()
	if err != nil {
		panic(err)
	}
	return len(subids)
}

// classifyReport names the single counter OID carried by a Report
// PDU's varbind list, or reports ok=false if it falls outside all
// three known subtrees (an unrecognised or future report type). The
// discriminator is the sub-id immediately after the subtree prefix,
// not the trailing instance sub-id: every real Report varbind OID is
// an object instance ending in ".0" (e.g.
// 1.3.6.1.6.3.15.1.1.2.0), so the instance sub-id itself carries no
// information about which counter fired.
func classifyReport(oid OID) (name string, ok bool) {
	subids, err := oid.Ints()
	if err != nil {
		return "", false
	}
	switch {
	case oid.HasPrefix(mpdStatsPrefix) && len(subids) > mpdStatsPrefixLen:
		name, ok = mpdStats[subids[mpdStatsPrefixLen]]
	case oid.HasPrefix(usmStatsPrefix) && len(subids) > usmStatsPrefixLen:
		name, ok = usmStats[subids[usmStatsPrefixLen]]
	case oid.HasPrefix(targetStatsPrefix) && len(subids) > targetStatsPrefixLen:
		name, ok = targetStats[subids[targetStatsPrefixLen]]
	}
	return name, ok
}

// ReportRecoverable reports whether kind names a condition a Session
// can recover from by resynchronising and retrying once, rather than
// surfacing the Report to the caller as a hard failure.
func ReportRecoverable(kind string) bool {
	switch kind {
	case "usmStatsNotInTimeWindows", "usmStatsUnknownEngineIDs":
		return true
	default:
		return false
	}
}
