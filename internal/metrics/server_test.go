package metrics_test

import (
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/catmux-radio/catmux/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMetricsServerDisabledReturnsNil(t *testing.T) {
	t.Parallel()
	err := metrics.CreateMetricsServer(false, "127.0.0.1", 0)
	assert.NoError(t, err)
}

func TestCreateMetricsServerPortInUseReturnsError(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port

	err = metrics.CreateMetricsServer(true, "127.0.0.1", port)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "127.0.0.1:"+strconv.Itoa(port)))
}
