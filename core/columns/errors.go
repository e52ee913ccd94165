/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package columns

import "errors"

var (
	// ErrUnknownColumn is returned when a column id is not registered.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned when two descriptors share an id.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrInvalidDescriptor is returned for descriptors whose kinds do not fit together.
	ErrInvalidDescriptor = errors.New("invalid column descriptor")

	// ErrUnresolvedAccessor is returned when an accessor names a field the dataset does not declare.
	ErrUnresolvedAccessor = errors.New("accessor does not resolve")

	// ErrUnparsableDatetime is returned when a value cannot be read as a timestamp.
	ErrUnparsableDatetime = errors.New("unable to parse datetime")
)
