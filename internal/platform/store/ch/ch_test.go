package ch

import (
	"context"
	"errors"
	"testing"

	"paygate/internal/platform/testkit"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), Config{URL: "://nope"})
	assert.ErrorContains(t, err, "clickhouse dsn")
}

func TestOpen_AppliesClientInfo(t *testing.T) {
	testkit.Serial(t)

	var seen *clickhouse.Options
	testkit.Swap(t, &openConn, func(o *clickhouse.Options) (driver.Conn, error) {
		seen = o
		return nil, errors.New("no server")
	})

	_, err := Open(context.Background(), Config{
		URL:        "clickhouse://default:@localhost:9000/paygate",
		ClientName: "paygate",
		ClientTag:  "api",
	})
	require.ErrorContains(t, err, "clickhouse open")
	require.NotNil(t, seen)
	require.NotEmpty(t, seen.ClientInfo.Products)
	assert.Equal(t, "paygate", seen.ClientInfo.Products[0].Name)
	assert.Equal(t, "api", seen.ClientInfo.Products[0].Version)
}

func TestInsert_EmptyIsNoop(t *testing.T) {
	t.Parallel()
	c := &CH{}
	assert.NoError(t, c.Insert(context.Background(), "grants", nil))
}

func TestBuildClientInfo_FillsBlanks(t *testing.T) {
	t.Parallel()
	ci := BuildClientInfo(" ", "")
	require.NotEmpty(t, ci.Products)
	assert.Equal(t, "unknown", ci.Products[0].Name)
	assert.Equal(t, "unknown", ci.Products[0].Version)
}
