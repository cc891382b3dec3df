/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLookupEnvBoolOr(t *testing.T) {
	assert.True(t, LookupEnvBoolOr("fake_bool_env", true))
	t.Setenv("DYNOGRAPH_TEST_BOOL", "false")
	assert.False(t, LookupEnvBoolOr("DYNOGRAPH_TEST_BOOL", true))
	t.Setenv("DYNOGRAPH_TEST_BOOL", "")
	assert.True(t, LookupEnvBoolOr("DYNOGRAPH_TEST_BOOL", true))
	t.Setenv("DYNOGRAPH_TEST_BOOL", "maybe")
	assert.Panics(t, func() { LookupEnvBoolOr("DYNOGRAPH_TEST_BOOL", true) })
}

func TestLookupEnvDurationOr(t *testing.T) {
	assert.Equal(t, 3*time.Second, LookupEnvDurationOr("fake_duration_env", 3*time.Second))
	t.Setenv("DYNOGRAPH_TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, LookupEnvDurationOr("DYNOGRAPH_TEST_DURATION", time.Second))
	t.Setenv("DYNOGRAPH_TEST_DURATION", "soon")
	assert.Panics(t, func() { LookupEnvDurationOr("DYNOGRAPH_TEST_DURATION", time.Second) })
}
