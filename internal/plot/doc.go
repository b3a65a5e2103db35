/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package plot is the function plotting engine. It maps between world and
// screen space (Mapper), plans nice-number grids and ticks (PlanGrid), traces
// a function into screen segments split at non-finite samples (Trace), runs the
// pan/zoom/probe gesture state machine (Controller) and renders a frame into a
// display list (Render). Nothing in this package touches a GUI toolkit.
package plot
