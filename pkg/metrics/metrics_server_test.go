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

package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/numaproj/dynograph/pkg/shared/logging"
)

func Test_MetricsServer_WithPort(t *testing.T) {
	ms := NewMetricsServer(WithPort(9191))
	assert.Equal(t, 9191, ms.port)
	assert.Equal(t, 9090, NewMetricsServer().port)
}

func Test_MetricsServer_Handler(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	BatchesServed.WithLabelValues("edgelist", "unsorted").Inc()

	ms := NewMetricsServer()
	srv := httptest.NewServer(ms.Handler(ctx))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func Test_MetricsServer_FailingHealthCheck(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	ms := NewMetricsServer(WithHealthCheckExecutor(func() error {
		return errors.New("not ready")
	}))
	srv := httptest.NewServer(ms.Handler(ctx))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	_ = resp.Body.Close()
}
