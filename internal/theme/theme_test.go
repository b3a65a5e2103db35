/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funcplot/internal/vector"
)

func TestDefaultMatchesClassicLook(t *testing.T) {
	d := Default()
	assert.Equal(t, vector.White, d.Background)
	assert.Equal(t, vector.Blue, d.Curve.Color)
	assert.Equal(t, 2.0, d.Curve.Width)
	assert.True(t, d.Axes.Dashed(), "axes must be dashed")
	assert.False(t, d.Grid.Dashed())
	assert.Equal(t, vector.Red, d.Probe)
}

func TestParseOverlaysDefaults(t *testing.T) {
	th, err := Parse([]byte(`{"name":"ink","curve":{"color":"#112233","width":3},"font_size":11}`))
	require.NoError(t, err)
	assert.Equal(t, "ink", th.Name)
	assert.Equal(t, vector.Color{R: 0x11, G: 0x22, B: 0x33, A: 255}, th.Curve.Color)
	assert.Equal(t, 3.0, th.Curve.Width)
	assert.Equal(t, 11.0, th.Font.Size)
	// untouched fields keep defaults
	assert.Equal(t, Default().Grid, th.Grid)
	assert.Equal(t, Default().Background, th.Background)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"colour":"#fff"}`,
		"bad color":     `{"background":"white"}`,
		"zero width":    `{"curve":{"width":0}}`,
		"negative dash": `{"axes":{"dash":[4,-1]}}`,
		"not an object": `[1,2,3]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestResolveBuiltinAndFile(t *testing.T) {
	th, err := Resolve("dark")
	require.NoError(t, err)
	assert.Equal(t, "dark", th.Name)

	path := filepath.Join(t.TempDir(), "t.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"background":"#000"}`), 0o644))
	th, err = Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, vector.Black, th.Background)

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
