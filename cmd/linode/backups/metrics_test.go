// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups_test

import (
	"bytes"
	"net/http"
	"time"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/linode/linode-backups/api/httpclient"
	"github.com/linode/linode-backups/cmd/linode/backups"
)

type metricsSuite struct{}

var _ = gc.Suite(&metricsSuite{})

func (s *metricsSuite) TestWriteMetrics(c *gc.C) {
	collector := httpclient.NewMetricsCollector()
	collector.Record("GET", nil, &http.Response{StatusCode: http.StatusOK}, 200*time.Millisecond)

	var buf bytes.Buffer
	err := backups.WriteMetrics(&buf, collector)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(buf.String(), jc.Contains, `linode_api_requests_total{code="200",method="GET"} 1`)
	c.Check(buf.String(), jc.Contains, `linode_api_request_duration_seconds_count{method="GET"} 1`)
}

func (s *metricsSuite) TestWriteMetricsEmpty(c *gc.C) {
	var buf bytes.Buffer
	err := backups.WriteMetrics(&buf, httpclient.NewMetricsCollector())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(buf.String(), gc.Equals, "")
}
