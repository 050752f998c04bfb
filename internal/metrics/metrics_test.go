// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesChainHeight(t *testing.T) {
	m := New()
	m.ChainHeight.Set(12345)
	m.BlocksAccepted.WithLabelValues("mining").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("metrics handler returned status %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "visionx_chain_height 12345") {
		t.Fatalf("metrics output missing chain height gauge:\n%s", body)
	}
	if !strings.Contains(body, `visionx_blocks_accepted_total{phase="mining"} 1`) {
		t.Fatalf("metrics output missing blocks_accepted counter:\n%s", body)
	}
}
