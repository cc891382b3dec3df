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
	"fmt"
	"os"
	"strconv"
	"time"
)

// lookupEnvOr returns the parsed value of the environment variable key, or defaultValue when it is
// unset or empty. An unparsable value panics.
func lookupEnvOr[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	valStr, existing := os.LookupEnv(key)
	if !existing || valStr == "" {
		return defaultValue
	}
	val, err := parse(valStr)
	if err != nil {
		panic(fmt.Errorf("invalid value for env variable %q, value %q", key, valStr))
	}
	return val
}

func LookupEnvBoolOr(key string, defaultValue bool) bool {
	return lookupEnvOr(key, defaultValue, strconv.ParseBool)
}

func LookupEnvDurationOr(key string, defaultValue time.Duration) time.Duration {
	return lookupEnvOr(key, defaultValue, time.ParseDuration)
}
