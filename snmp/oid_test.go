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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOID_RoundTripsToString(t *testing.T) {
	oid, err := ParseOID("1.3.6.1.2.1.1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2.1.1.1.0", oid.String())
}

func TestParseOID_LeadingDot(t *testing.T) {
	oid, err := ParseOID(".1.3.6.1.2.1.1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2.1.1.1.0", oid.String())
}

func TestParseOID_Invalid(t *testing.T) {
	_, err := ParseOID("1.3.abc.1")
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, MalformedOID, pe.Kind)
}

func TestOID_Equal(t *testing.T) {
	a := MustOID(1, 3, 6, 1, 2, 1, 1, 1, 0)
	b := MustOID(1, 3, 6, 1, 2, 1, 1, 1, 0)
	c := MustOID(1, 3, 6, 1, 2, 1, 1, 2, 0)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestOID_HasPrefix(t *testing.T) {
	root := MustOID(1, 3, 6, 1, 2, 1, 2, 2)
	child := MustOID(1, 3, 6, 1, 2, 1, 2, 2, 1, 10, 1)
	other := MustOID(1, 3, 6, 1, 2, 1, 1, 1, 0)
	assert.True(t, child.HasPrefix(root))
	assert.False(t, other.HasPrefix(root))
	assert.True(t, root.HasPrefix(root))
}

func TestOID_Clone_Independent(t *testing.T) {
	orig := MustOID(1, 3, 6, 1)
	clone := orig.Clone()
	assert.True(t, orig.Equal(clone))
	ints, err := clone.Ints()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 3, 6, 1}, ints)
}

func TestMustOID_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		MustOID(1)
	})
}
