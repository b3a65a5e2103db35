/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// maxDashes bounds the pieces produced for one segment so a very long axis
// line with a tiny pattern cannot allocate without limit.
const maxDashes = 20000

// Segment is a pair of endpoints.
type Segment struct{ A, B Pt }

// SplitDashes cuts the segment a→b into the visible "on" pieces of pattern.
// A solid or invalid pattern returns the whole segment.
func SplitDashes(a, b Pt, pattern []float64) []Segment {
	s := Stroke{Dash: pattern}
	length := a.Dist(b)
	if !s.Dashed() || length == 0 || !Finite(length) {
		return []Segment{{a, b}}
	}
	dx := (b.X - a.X) / length
	dy := (b.Y - a.Y) / length
	at := func(t float64) Pt { return Pt{a.X + dx*t, a.Y + dy*t} }

	var out []Segment
	pos := 0.0
	on := true
	for i := 0; pos < length && len(out) < maxDashes; i++ {
		step := pattern[i%len(pattern)]
		end := pos + step
		if end > length {
			end = length
		}
		if on && end > pos {
			out = append(out, Segment{at(pos), at(end)})
		}
		pos = end
		on = !on
	}
	return out
}
