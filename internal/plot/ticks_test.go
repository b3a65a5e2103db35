/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNiceNumber(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{4, 5},
		{0.07, 0.1},
		{1, 1},
		{1.2, 1},
		{1.5, 2},
		{2.5, 2},
		{3, 5},
		{6.9, 5},
		{7, 10},
		{10, 10},
		{1234, 1000},
	}
	for _, tc := range cases {
		got := NiceNumber(tc.in)
		assert.InDelta(t, tc.want, got, tc.want*1e-12, "NiceNumber(%g)", tc.in)
	}
}

func TestNiceNumber_InvalidInputIsOne(t *testing.T) {
	for _, v := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		assert.Equal(t, 1.0, NiceNumber(v))
	}
}

func TestNiceSpacing_DefaultScale(t *testing.T) {
	// 50px at 30px/unit is 1.67 units, rounded to 2.
	assert.Equal(t, 2.0, NiceSpacing(DefaultScale))
	assert.Equal(t, 1.0, NiceSpacing(50))
}

func TestTicks_StartAtFloorAndIncludeZero(t *testing.T) {
	got := Ticks(-3.1, 3.1, 1)
	assert.Equal(t, []float64{-4, -3, -2, -1, 0, 1, 2, 3}, got)

	got = Ticks(-0.3, 0.3, 0.1)
	require.NotEmpty(t, got)
	assert.Contains(t, got, 0.0)
	for _, v := range got {
		assert.LessOrEqual(t, v, 0.3)
	}
}

func TestTicks_IndexedNotAccumulated(t *testing.T) {
	step := 0.1
	got := Ticks(0, 9.95, step)
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, float64(i)*step, v)
	}
}

func TestTicks_Capped(t *testing.T) {
	got := Ticks(0, 1e9, 1)
	assert.Len(t, got, MaxTicks)
}

func TestTicks_Invalid(t *testing.T) {
	assert.Nil(t, Ticks(0, 1, 0))
	assert.Nil(t, Ticks(0, 1, -1))
	assert.Nil(t, Ticks(1, 0, 1))
	assert.Nil(t, Ticks(math.Inf(-1), 0, 1))
	assert.Nil(t, Ticks(0, 1, math.NaN()))
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "0", FormatTick(0))
	assert.Equal(t, "0", FormatTick(math.Copysign(0, -1)))
	assert.Equal(t, "0.1", FormatTick(0.1))
	assert.Equal(t, "-2", FormatTick(-2))
	assert.Equal(t, "123456", FormatTick(123456))
	assert.Equal(t, "1e+06", FormatTick(1e6))
}

func TestPlanGrid(t *testing.T) {
	p := PlanGrid(NewMapper(DefaultView(), vp800))
	assert.Equal(t, 2.0, p.Spacing)
	assert.InDelta(t, 0.4, p.MinorSpacing, 1e-12)
	assert.Contains(t, p.XTicks, 0.0)
	assert.Contains(t, p.YTicks, 0.0)
	assert.Greater(t, len(p.XMinor), len(p.XTicks))
	// visible x is [-13.33, 13.33]: ticks -14..12 step 2
	assert.Equal(t, -14.0, p.XTicks[0])
	assert.Equal(t, 12.0, p.XTicks[len(p.XTicks)-1])
}
